package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

const defaultCategory = "General"

type courseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCourseService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	courses, total, err := s.repo.Course().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return &CourseListResponse{
		Courses: courses,
		Total:   total,
		Page:    filters.Offset/filters.Limit + 1,
		Size:    filters.Limit,
	}, nil
}

// Get hides inactive and deleted courses from everyone but admins
func (s *courseService) Get(ctx context.Context, id uint, viewer *models.User) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if !course.IsAvailable() && !viewer.IsAdmin() {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

func (s *courseService) Create(ctx context.Context, actor *models.User, req *CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}
	if errs := s.validator.Business().ValidateCurriculum(req.Curriculum); len(errs) > 0 {
		return nil, validationError(errs)
	}

	course := &models.Course{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price.Round(2),
		Category:    strings.TrimSpace(req.Category),
		IsActive:    true,
	}
	if course.Category == "" {
		course.Category = defaultCategory
	}
	if req.Curriculum != nil {
		course.Curriculum = datatypes.NewJSONType(*req.Curriculum)
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}

	if err := s.repo.Course().Create(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.audit(ctx, actor, models.AuditCourseCreated, fmt.Sprintf("created course %d %q", course.ID, course.Title))
	return course, nil
}

func (s *courseService) Update(ctx context.Context, actor *models.User, id uint, req *UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}
	if errs := s.validator.Business().ValidateCurriculum(req.Curriculum); len(errs) > 0 {
		return nil, validationError(errs)
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = req.Price.Round(2)
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			category = defaultCategory
		}
		updates["category"] = category
	}
	if req.Curriculum != nil {
		updates["curriculum"] = datatypes.NewJSONType(*req.Curriculum)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.repo.Course().Update(ctx, nil, id, updates); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCourseNotFound
			}
			return nil, fmt.Errorf("failed to update course: %w", err)
		}
		s.audit(ctx, actor, models.AuditCourseUpdated, fmt.Sprintf("updated course %d", id))
	}

	return s.Get(ctx, id, actor)
}

func (s *courseService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if err := s.repo.Course().SoftDelete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.audit(ctx, actor, models.AuditCourseArchived, fmt.Sprintf("archived course %d", id))
	return nil
}

// audit is best effort; the catalog change has already been committed
func (s *courseService) audit(ctx context.Context, actor *models.User, action models.AuditAction, details string) {
	entry := &models.AuditLog{
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		Action:     action,
		Details:    details,
	}
	if err := s.repo.AuditLog().Create(ctx, nil, entry); err != nil {
		s.logger.Error("Failed to write audit log", "action", action, "error", err)
		return
	}
	s.logger.Info("Admin action", "actor_id", actor.ID, "action", action, "details", details)
}
