package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/metrics"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

// maxMintAttempts bounds retries on certificate id collisions
const maxMintAttempts = 5

type EnrollmentConfig struct {
	// CertificatePrefix is the platform tag in front of every certificate id
	CertificatePrefix string
	// Currency is used when rendering amounts in notifications
	Currency string
}

type enrollmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	payments  PaymentVerifier
	metrics   metrics.Recorder
	config    EnrollmentConfig

	now              func() time.Time
	newCertificateID func() string
}

func NewEnrollmentService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.Validator,
	publisher events.EventPublisher,
	payments PaymentVerifier,
	recorder metrics.Recorder,
	config EnrollmentConfig,
) EnrollmentService {
	return newEnrollmentService(repo, db, logger, validator, publisher, payments, recorder, config)
}

func newEnrollmentService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.Validator,
	publisher events.EventPublisher,
	payments PaymentVerifier,
	recorder metrics.Recorder,
	config EnrollmentConfig,
) *enrollmentService {
	if recorder == nil {
		recorder = (*metrics.Metrics)(nil)
	}
	if config.CertificatePrefix == "" {
		config.CertificatePrefix = "AIC"
	}
	prefix := config.CertificatePrefix

	return &enrollmentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		payments:  payments,
		metrics:   recorder,
		config:    config,
		now:       time.Now,
		newCertificateID: func() string {
			return NewCertificateID(prefix)
		},
	}
}

// ===== ENROLLMENT =====

func (s *enrollmentService) Enroll(ctx context.Context, user *models.User, courseID uint, paymentRef *string) (*EnrollResult, error) {
	s.logger.Info("Enrolling user", "user_id", user.ID, "course_id", courseID)

	// An existing enrollment is returned as is, even after the course was
	// withdrawn, and a retried confirmation never hits the payment gate again
	existing, err := s.repo.Enrollment().GetByUserAndCourse(ctx, nil, user.ID, courseID)
	if err == nil {
		return &EnrollResult{Enrollment: existing, Created: false}, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}

	course, err := s.getAvailableCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if !course.IsFree() {
		if paymentRef == nil || *paymentRef == "" || s.payments == nil {
			return nil, ErrPaymentNotVerified
		}
		if err := s.payments.ConfirmPurchase(ctx, user, course, *paymentRef); err != nil {
			return nil, err
		}
	} else {
		// Free enrollments never carry a payment reference
		paymentRef = nil
	}

	enrollment := &models.Enrollment{
		UserID:           user.ID,
		CourseID:         course.ID,
		Status:           models.EnrollmentInProgress,
		Progress:         0,
		LastModuleIndex:  0,
		LastLessonIndex:  0,
		PaymentReference: paymentRef,
	}

	var stored *models.Enrollment
	var created bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		stored, created, err = s.repo.Enrollment().CreateIfAbsent(ctx, tx, enrollment)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	if created {
		source := "free"
		if stored.PaymentReference != nil {
			source = "paid"
		}
		s.metrics.EnrollmentCreated(source)
		s.logger.Info("Enrollment created", "enrollment_id", stored.ID, "user_id", user.ID, "course_id", courseID, "source", source)
		s.publishEnrollmentConfirmed(ctx, user, course, stored)
	}

	return &EnrollResult{Enrollment: stored, Created: created}, nil
}

// ===== PROGRESS =====

func (s *enrollmentService) UpdateProgress(ctx context.Context, user *models.User, req *ProgressPatchRequest) (*ProgressResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	update := repositories.ProgressUpdate{
		Progress:        req.Progress,
		Status:          req.Status,
		Score:           req.Score,
		LastModuleIndex: req.ModuleIndex,
		LastLessonIndex: req.LessonIndex,
	}

	var enrollment *models.Enrollment
	var minted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		enrollment, err = s.repo.Enrollment().LockByUserAndCourse(ctx, tx, user.ID, req.CourseID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrNotEnrolled
			}
			return fmt.Errorf("failed to load enrollment: %w", err)
		}

		if update.LastModuleIndex != nil || update.LastLessonIndex != nil {
			if err := s.validateBookmark(ctx, tx, enrollment, update); err != nil {
				return err
			}
		}

		if err := s.repo.Enrollment().ApplyProgress(ctx, tx, enrollment.ID, update); err != nil {
			return fmt.Errorf("failed to apply progress: %w", err)
		}
		applyProgress(enrollment, update)

		if enrollment.NeedsCertificate() {
			minted, err = s.mintCertificate(ctx, tx, enrollment)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if minted {
		s.afterMint(ctx, user, enrollment)
	}

	return &ProgressResult{
		CertificateID:  enrollment.CertificateID,
		NewlyCertified: minted,
		Enrollment:     enrollment,
	}, nil
}

// ===== STATUS =====

func (s *enrollmentService) GetStatus(ctx context.Context, user *models.User, courseID uint) (*EnrollmentView, error) {
	if user.IsAdmin() {
		if _, err := s.getCourse(ctx, courseID); err != nil {
			return nil, err
		}
		return previewView(courseID), nil
	}

	enrollment, err := s.repo.Enrollment().GetByUserAndCourse(ctx, nil, user.ID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotEnrolled
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	if enrollment.NeedsCertificate() {
		enrollment, err = s.RepairCertificate(ctx, user.ID, courseID)
		if err != nil {
			return nil, err
		}
	}

	return viewOf(enrollment), nil
}

// RepairCertificate mints the certificate of a completed but uncertified
// enrollment. It is a no-op for every other row.
func (s *enrollmentService) RepairCertificate(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	var minted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		enrollment, err = s.repo.Enrollment().LockByUserAndCourse(ctx, tx, userID, courseID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrNotEnrolled
			}
			return fmt.Errorf("failed to load enrollment: %w", err)
		}

		if !enrollment.NeedsCertificate() {
			return nil
		}
		minted, err = s.mintCertificate(ctx, tx, enrollment)
		return err
	})
	if err != nil {
		return nil, err
	}

	if minted {
		s.logger.Warn("Repaired completed enrollment without certificate",
			"enrollment_id", enrollment.ID,
			"user_id", userID,
			"course_id", courseID)
		user, err := s.repo.User().GetByID(ctx, nil, userID)
		if err != nil {
			s.logger.Error("Failed to load user for certificate notification", "user_id", userID, "error", err)
			user = &models.User{ID: userID}
		}
		s.afterMint(ctx, user, enrollment)
	}

	return enrollment, nil
}

// ===== LISTING =====

func (s *enrollmentService) ListMine(ctx context.Context, user *models.User) ([]*MyEnrollmentResponse, error) {
	enrollments, err := s.repo.Enrollment().ListByUser(ctx, nil, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	responses := make([]*MyEnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		resp := &MyEnrollmentResponse{EnrollmentView: *viewOf(e)}
		if e.Course != nil {
			resp.CourseTitle = e.Course.Title
			resp.Category = e.Course.Category
			resp.TotalLessons = e.Course.LessonCount()
			resp.TotalModules = e.Course.ModuleCount()
		}
		responses = append(responses, resp)
	}

	return responses, nil
}
