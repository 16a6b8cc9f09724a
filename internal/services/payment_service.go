package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/course-service/internal/metrics"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/payments"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type PaymentConfig struct {
	Currency string
	// FrontendURL is the base of the checkout success and cancel pages
	FrontendURL string
}

// oracleVerifier checks a checkout session against the course being bought.
// The oracle is the only source of truth; nothing from the client is trusted.
type oracleVerifier struct {
	oracle   payments.Oracle
	currency string
	metrics  metrics.Recorder
	logger   *slog.Logger
}

func NewPaymentVerifier(oracle payments.Oracle, currency string, recorder metrics.Recorder, logger *slog.Logger) PaymentVerifier {
	if recorder == nil {
		recorder = (*metrics.Metrics)(nil)
	}
	return &oracleVerifier{
		oracle:   oracle,
		currency: strings.ToLower(currency),
		metrics:  recorder,
		logger:   logger,
	}
}

func (v *oracleVerifier) ConfirmPurchase(ctx context.Context, user *models.User, course *models.Course, sessionID string) error {
	verification, err := v.oracle.Verify(ctx, sessionID)
	if err != nil {
		if errors.Is(err, payments.ErrSessionNotFound) {
			v.metrics.PaymentVerified("not_found")
			return ErrPaymentNotVerified
		}
		v.metrics.PaymentVerified("error")
		return fmt.Errorf("failed to verify payment: %w", err)
	}

	if !verification.Paid {
		v.metrics.PaymentVerified("unpaid")
		v.logger.Info("Payment not completed", "session_id", sessionID, "user_id", user.ID, "course_id", course.ID)
		return ErrPaymentNotVerified
	}

	if reason := v.mismatch(verification, user, course); reason != "" {
		v.metrics.PaymentVerified("mismatch")
		v.logger.Warn("Payment does not match purchase",
			"session_id", sessionID,
			"user_id", user.ID,
			"course_id", course.ID,
			"reason", reason)
		return ErrPaymentNotVerified
	}

	v.metrics.PaymentVerified("paid")
	return nil
}

func (v *oracleVerifier) mismatch(verification *payments.Verification, user *models.User, course *models.Course) string {
	if verification.Metadata[payments.MetadataCourseID] != strconv.FormatUint(uint64(course.ID), 10) {
		return "course"
	}
	if owner := verification.Metadata[payments.MetadataUserID]; owner != "" && owner != user.ID {
		return "user"
	}
	if ref := verification.ClientReferenceID; ref != "" && ref != user.ID {
		return "user"
	}
	if verification.AmountTotal != course.PriceMinorUnits() {
		return "amount"
	}
	if v.currency != "" && !strings.EqualFold(verification.Currency, v.currency) {
		return "currency"
	}
	return ""
}

type paymentService struct {
	repo       repositories.Repository
	oracle     payments.Oracle
	enrollment EnrollmentService
	logger     *slog.Logger
	config     PaymentConfig
}

func NewPaymentService(repo repositories.Repository, oracle payments.Oracle, enrollment EnrollmentService, logger *slog.Logger, config PaymentConfig) PaymentService {
	return &paymentService{
		repo:       repo,
		oracle:     oracle,
		enrollment: enrollment,
		logger:     logger,
		config:     config,
	}
}

func (s *paymentService) CreateCheckout(ctx context.Context, user *models.User, courseID uint) (*payments.CheckoutSession, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if !course.IsAvailable() {
		return nil, ErrCourseNotFound
	}
	if course.IsFree() {
		return nil, fmt.Errorf("%w: course is free, enroll directly", ErrConflict)
	}

	if _, err := s.repo.Enrollment().GetByUserAndCourse(ctx, nil, user.ID, courseID); err == nil {
		return nil, fmt.Errorf("%w: already enrolled", ErrConflict)
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}

	id := strconv.FormatUint(uint64(course.ID), 10)
	session, err := s.oracle.CreateCheckout(ctx, payments.CheckoutRequest{
		CourseID:    course.ID,
		CourseTitle: course.Title,
		UserID:      user.ID,
		UserEmail:   user.Email,
		AmountMinor: course.PriceMinorUnits(),
		Currency:    s.config.Currency,
		// The provider substitutes the literal {CHECKOUT_SESSION_ID}
		SuccessURL: s.config.FrontendURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}&course_id=" + url.QueryEscape(id),
		CancelURL:  s.config.FrontendURL + "/courses/" + id,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.logger.Info("Checkout session created", "session_id", session.SessionID, "user_id", user.ID, "course_id", courseID)
	return session, nil
}

// VerifyAndEnroll hands the session to the enrollment engine, which asks the
// oracle before creating anything.
func (s *paymentService) VerifyAndEnroll(ctx context.Context, user *models.User, courseID uint, sessionID string) (*EnrollResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrPaymentNotVerified
	}
	return s.enrollment.Enroll(ctx, user, courseID, &sessionID)
}
