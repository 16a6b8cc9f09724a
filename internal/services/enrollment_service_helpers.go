package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

// NewCertificateID returns PREFIX-XXXXXXXX with eight upper-case hex digits
func NewCertificateID(prefix string) string {
	return strings.ToUpper(prefix) + "-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *enrollmentService) getCourse(ctx context.Context, courseID uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

// getAvailableCourse hides inactive and deleted courses from new enrollments
func (s *enrollmentService) getAvailableCourse(ctx context.Context, courseID uint) (*models.Course, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsAvailable() {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

func (s *enrollmentService) validateBookmark(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment, update repositories.ProgressUpdate) error {
	course, err := s.repo.Course().GetByID(ctx, tx, enrollment.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get course: %w", err)
	}

	module := update.LastModuleIndex
	if module == nil {
		current := enrollment.LastModuleIndex
		module = &current
	}

	if errs := s.validator.Business().ValidateBookmark(course, module, update.LastLessonIndex); len(errs) > 0 {
		return validationError(errs)
	}
	return nil
}

// applyProgress mirrors a successful ApplyProgress on the in-memory row
func applyProgress(enrollment *models.Enrollment, update repositories.ProgressUpdate) {
	if update.Progress != nil {
		enrollment.Progress = *update.Progress
	}
	if update.Status != nil {
		enrollment.Status = *update.Status
	}
	if update.Score != nil {
		score := *update.Score
		enrollment.Score = &score
	}
	if update.LastModuleIndex != nil {
		enrollment.LastModuleIndex = *update.LastModuleIndex
	}
	if update.LastLessonIndex != nil {
		enrollment.LastLessonIndex = *update.LastLessonIndex
	}
}

// mintCertificate stamps a certificate on enrollment inside tx. Each attempt
// runs in a savepoint so an id collision does not poison the outer
// transaction. Returns false when another writer certified the row first, in
// which case enrollment is refreshed with the stored certificate.
func (s *enrollmentService) mintCertificate(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) (bool, error) {
	for attempt := 1; attempt <= maxMintAttempts; attempt++ {
		grant := repositories.CertificateGrant{
			CertificateID:  s.newCertificateID(),
			CompletionDate: s.now().UTC(),
			Score:          enrollment.Score,
		}

		var won bool
		err := tx.Transaction(func(sp *gorm.DB) error {
			var err error
			won, err = s.repo.Enrollment().AssignCertificate(ctx, sp, enrollment.ID, grant)
			return err
		})
		if err != nil {
			if repositories.IsDuplicateError(err) {
				s.logger.Warn("Certificate id collision, regenerating",
					"enrollment_id", enrollment.ID,
					"attempt", attempt)
				continue
			}
			return false, fmt.Errorf("failed to assign certificate: %w", err)
		}

		if !won {
			current, err := s.repo.Enrollment().GetByUserAndCourse(ctx, tx, enrollment.UserID, enrollment.CourseID)
			if err != nil {
				return false, fmt.Errorf("failed to reload certified enrollment: %w", err)
			}
			*enrollment = *current
			return false, nil
		}

		enrollment.CertificateID = &grant.CertificateID
		enrollment.CompletionDate = &grant.CompletionDate
		enrollment.CertifiedScore = grant.Score
		return true, nil
	}

	return false, errors.New("failed to generate a unique certificate id")
}

func (s *enrollmentService) afterMint(ctx context.Context, user *models.User, enrollment *models.Enrollment) {
	s.metrics.CertificateIssued()
	s.logger.Info("Certificate issued",
		"enrollment_id", enrollment.ID,
		"certificate_id", *enrollment.CertificateID,
		"user_id", enrollment.UserID,
		"course_id", enrollment.CourseID)

	course, err := s.getCourse(ctx, enrollment.CourseID)
	if err != nil {
		s.logger.Error("Failed to load course for certificate notification", "course_id", enrollment.CourseID, "error", err)
		course = &models.Course{ID: enrollment.CourseID}
	}

	s.publish(ctx, models.EventCertificateIssued, models.CertificateIssuedData{
		EnrollmentID:   enrollment.ID,
		CertificateID:  *enrollment.CertificateID,
		UserID:         user.ID,
		UserEmail:      user.Email,
		UserName:       user.FullName,
		CourseID:       course.ID,
		CourseTitle:    course.Title,
		CompletionDate: *enrollment.CompletionDate,
		Score:          enrollment.CertifiedScore,
	})
}

func (s *enrollmentService) publishEnrollmentConfirmed(ctx context.Context, user *models.User, course *models.Course, enrollment *models.Enrollment) {
	data := models.EnrollmentConfirmedData{
		EnrollmentID:     enrollment.ID,
		UserID:           user.ID,
		UserEmail:        user.Email,
		UserName:         user.FullName,
		CourseID:         course.ID,
		CourseTitle:      course.Title,
		PaymentReference: enrollment.PaymentReference,
		EnrolledAt:       enrollment.EnrolledAt,
	}
	if enrollment.PaymentReference != nil {
		data.AmountPaid = course.Price.StringFixed(2) + " " + strings.ToUpper(s.config.Currency)
	}
	s.publish(ctx, models.EventEnrollmentConfirmed, data)
}

// publish never fails the caller; notification loss is only logged
func (s *enrollmentService) publish(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}

	event, err := events.NewEvent(eventType, data)
	if err != nil {
		s.logger.Error("Failed to build event", "event_type", eventType, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", eventType, "event_id", event.ID, "error", err)
	}
}

func previewView(courseID uint) *EnrollmentView {
	certificate := models.AdminPreviewCertificate
	return &EnrollmentView{
		CourseID:      courseID,
		Status:        models.EnrollmentCompleted,
		Progress:      100,
		CertificateID: &certificate,
		IsPreview:     true,
	}
}

func viewOf(e *models.Enrollment) *EnrollmentView {
	enrolledAt := e.EnrolledAt
	return &EnrollmentView{
		CourseID:        e.CourseID,
		Status:          e.Status,
		Progress:        e.Progress,
		Score:           e.Score,
		LastModuleIndex: e.LastModuleIndex,
		LastLessonIndex: e.LastLessonIndex,
		CertificateID:   e.CertificateID,
		CompletionDate:  e.CompletionDate,
		EnrolledAt:      &enrolledAt,
	}
}
