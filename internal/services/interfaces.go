package services

import (
	"bytes"
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/payments"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use validator request types
type ProgressPatchRequest = validator.ProgressPatchRequest
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type UpdateProfileRequest = validator.ProfileUpdateRequest

// Identity is what the token issuer asserts about the caller
type Identity struct {
	ID       string
	Email    string
	FullName string
	IsAdmin  bool
}

type EnrollResult struct {
	Enrollment *models.Enrollment
	// Created is false when the enrollment already existed
	Created bool
}

type ProgressResult struct {
	CertificateID  *string            `json:"certificate_id"`
	NewlyCertified bool               `json:"newly_certified"`
	Enrollment     *models.Enrollment `json:"enrollment"`
}

// EnrollmentView is the status of one enrollment as shown to its owner
type EnrollmentView struct {
	CourseID        uint                    `json:"course_id"`
	Status          models.EnrollmentStatus `json:"status"`
	Progress        int                     `json:"progress"`
	Score           *float64                `json:"score"`
	LastModuleIndex int                     `json:"last_module_index"`
	LastLessonIndex int                     `json:"last_lesson_index"`
	CertificateID   *string                 `json:"certificate_id"`
	CompletionDate  *time.Time              `json:"completion_date"`
	EnrolledAt      *time.Time              `json:"enrolled_at,omitempty"`
	IsPreview       bool                    `json:"is_preview"`
}

type MyEnrollmentResponse struct {
	EnrollmentView
	CourseTitle  string `json:"course_title"`
	Category     string `json:"category"`
	TotalLessons int    `json:"total_lessons"`
	TotalModules int    `json:"total_modules"`
}

// CertificateVerification is the public view of a certificate. Unknown ids
// produce only {"valid": false}.
type CertificateVerification struct {
	Valid          bool     `json:"valid"`
	CertificateID  string   `json:"certificate_id,omitempty"`
	StudentName    string   `json:"student_name,omitempty"`
	CourseTitle    string   `json:"course_title,omitempty"`
	CompletionDate string   `json:"completion_date,omitempty"`
	Score          *float64 `json:"score,omitempty"`
}

type CourseListResponse struct {
	Courses []*models.Course `json:"courses"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type TransactionResponse struct {
	EnrollmentID     uint            `json:"enrollment_id"`
	UserID           string          `json:"user_id"`
	UserEmail        string          `json:"user_email"`
	UserName         string          `json:"user_name"`
	CourseID         uint            `json:"course_id"`
	CourseTitle      string          `json:"course_title"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentReference string          `json:"payment_reference"`
	Date             time.Time       `json:"date"`
}

type TransactionListResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
	Page         int                    `json:"page"`
	Size         int                    `json:"size"`
}

// ===== SERVICE INTERFACES =====

// EnrollmentService owns the enrollment, progress and certification lifecycle
type EnrollmentService interface {
	// Enroll is idempotent: an existing enrollment is returned unchanged.
	// Priced courses require a payment reference the oracle confirms.
	Enroll(ctx context.Context, user *models.User, courseID uint, paymentRef *string) (*EnrollResult, error)
	UpdateProgress(ctx context.Context, user *models.User, req *ProgressPatchRequest) (*ProgressResult, error)
	// GetStatus returns the synthetic preview for admins without touching
	// enrollments, and repairs uncertified completions for everyone else.
	GetStatus(ctx context.Context, user *models.User, courseID uint) (*EnrollmentView, error)
	RepairCertificate(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error)
	ListMine(ctx context.Context, user *models.User) ([]*MyEnrollmentResponse, error)
}

type CertificateService interface {
	Verify(ctx context.Context, certificateID string) (*CertificateVerification, error)
}

type PaymentService interface {
	CreateCheckout(ctx context.Context, user *models.User, courseID uint) (*payments.CheckoutSession, error)
	VerifyAndEnroll(ctx context.Context, user *models.User, courseID uint, sessionID string) (*EnrollResult, error)
}

// PaymentVerifier confirms a purchase of course by user against the oracle
type PaymentVerifier interface {
	ConfirmPurchase(ctx context.Context, user *models.User, course *models.Course, sessionID string) error
}

type AccountService interface {
	ResolveIdentity(ctx context.Context, identity Identity) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error)
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)

	// Admin actions; an admin cannot target themselves
	Ban(ctx context.Context, actor *models.User, targetID string, days *int) (*models.User, error)
	SetRole(ctx context.Context, actor *models.User, targetID string, isAdmin bool) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, targetID string) error
	Restore(ctx context.Context, actor *models.User, targetID string) error
}

type CourseService interface {
	List(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error)
	Get(ctx context.Context, id uint, viewer *models.User) (*models.Course, error)
	Create(ctx context.Context, actor *models.User, req *CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, actor *models.User, id uint, req *UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, actor *models.User, id uint) error
}

type ReportService interface {
	Stats(ctx context.Context) (*repositories.PlatformStats, error)
	Transactions(ctx context.Context, filters repositories.EnrollmentFilters) (*TransactionListResponse, error)
	ExportTransactions(ctx context.Context, filters repositories.EnrollmentFilters) (*bytes.Buffer, error)
	AuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error)
}

// ServiceManager builds the services and manages their lifecycle
type ServiceManager interface {
	Enrollment() EnrollmentService
	Certificate() CertificateService
	Payment() PaymentService
	Account() AccountService
	Course() CourseService
	Report() ReportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
