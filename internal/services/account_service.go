package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

type accountService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewAccountService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger, validator *validator.Validator) AccountService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &accountService{
		repo:      repo,
		cache:     cacheManager,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// ResolveIdentity maps a verified token identity onto the local account,
// creating it on first sight. The token only seeds the role; afterwards the
// stored role is authoritative.
func (s *accountService) ResolveIdentity(ctx context.Context, identity Identity) (*models.User, error) {
	if identity.ID == "" {
		return nil, ErrUnauthorized
	}

	role := models.RoleStudent
	if identity.IsAdmin {
		role = models.RoleAdmin
	}

	name := strings.TrimSpace(identity.FullName)
	if name == "" {
		name = strings.Split(identity.Email, "@")[0]
	}
	if name == "" {
		name = identity.ID
	}

	user, created, err := s.repo.User().CreateIfAbsent(ctx, nil, &models.User{
		ID:       identity.ID,
		Email:    strings.ToLower(strings.TrimSpace(identity.Email)),
		FullName: name,
		Role:     role,
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, fmt.Errorf("%w: email already registered to another account", ErrConflict)
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if created {
		s.logger.Info("User registered", "user_id", user.ID, "role", user.Role)
	}

	if !user.CanAuthenticate(s.now()) {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

func (s *accountService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, userID)
}

func (s *accountService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	if err := s.repo.User().UpdateName(ctx, nil, userID, strings.TrimSpace(req.FullName)); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	// The student name is part of every cached certificate view
	ids, err := s.repo.Enrollment().CertificateIDsByUser(ctx, nil, userID)
	if err != nil {
		s.logger.Error("Failed to list certificates for cache invalidation", "user_id", userID, "error", err)
	} else {
		cache.InvalidateCertificatesForUser(ctx, s.cache, ids)
	}

	return s.getUser(ctx, userID)
}

func (s *accountService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserListResponse{
		Users: users,
		Total: total,
		Page:  filters.Offset/filters.Limit + 1,
		Size:  filters.Limit,
	}, nil
}

// ===== ADMIN ACTIONS =====

// Ban suspends the account for days days. Nil or zero lifts an existing ban.
func (s *accountService) Ban(ctx context.Context, actor *models.User, targetID string, days *int) (*models.User, error) {
	if err := s.checkTarget(actor, targetID); err != nil {
		return nil, err
	}

	var until *time.Time
	action := models.AuditUserUnbanned
	details := fmt.Sprintf("lifted ban of user %s", targetID)
	if days != nil && *days > 0 {
		expiry := s.now().UTC().Add(time.Duration(*days) * 24 * time.Hour)
		until = &expiry
		action = models.AuditUserBanned
		details = fmt.Sprintf("banned user %s for %d days", targetID, *days)
	}

	err := s.audited(ctx, actor, action, details, func(r repositories.Repository) error {
		return r.User().SetBanExpiry(ctx, nil, targetID, until)
	})
	if err != nil {
		return nil, err
	}
	return s.getUser(ctx, targetID)
}

func (s *accountService) SetRole(ctx context.Context, actor *models.User, targetID string, isAdmin bool) (*models.User, error) {
	if err := s.checkTarget(actor, targetID); err != nil {
		return nil, err
	}

	role := models.RoleStudent
	if isAdmin {
		role = models.RoleAdmin
	}

	err := s.audited(ctx, actor, models.AuditUserRole, fmt.Sprintf("set role of user %s to %s", targetID, role), func(r repositories.Repository) error {
		return r.User().SetRole(ctx, nil, targetID, role)
	})
	if err != nil {
		return nil, err
	}
	return s.getUser(ctx, targetID)
}

func (s *accountService) Delete(ctx context.Context, actor *models.User, targetID string) error {
	if err := s.checkTarget(actor, targetID); err != nil {
		return err
	}
	return s.audited(ctx, actor, models.AuditUserDeleted, fmt.Sprintf("deleted user %s", targetID), func(r repositories.Repository) error {
		return r.User().SetDeleted(ctx, nil, targetID, true)
	})
}

func (s *accountService) Restore(ctx context.Context, actor *models.User, targetID string) error {
	if err := s.checkTarget(actor, targetID); err != nil {
		return err
	}
	return s.audited(ctx, actor, models.AuditUserRestored, fmt.Sprintf("restored user %s", targetID), func(r repositories.Repository) error {
		return r.User().SetDeleted(ctx, nil, targetID, false)
	})
}

// ===== HELPERS =====

func (s *accountService) checkTarget(actor *models.User, targetID string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if actor.ID == targetID {
		return fmt.Errorf("%w: cannot modify your own account", ErrForbidden)
	}
	return nil
}

// audited runs mutate and writes the audit entry in one transaction
func (s *accountService) audited(ctx context.Context, actor *models.User, action models.AuditAction, details string, mutate func(repositories.Repository) error) error {
	err := s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		if err := mutate(r); err != nil {
			return err
		}
		return r.AuditLog().Create(ctx, nil, &models.AuditLog{
			ActorID:    actor.ID,
			ActorEmail: actor.Email,
			Action:     action,
			Details:    details,
		})
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to %s: %w", action, err)
	}

	s.logger.Info("Admin action", "actor_id", actor.ID, "action", action, "details", details)
	return nil
}

func (s *accountService) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
