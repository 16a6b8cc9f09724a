package validator

import (
	"github.com/shopspring/decimal"

	"github.com/SAP-F-2025/course-service/internal/models"
)

// EnrollRequest enrolls the caller into a course. Priced courses need the
// checkout session id as payment reference.
type EnrollRequest struct {
	CourseID         uint    `json:"course_id" validate:"required"`
	PaymentReference *string `json:"payment_reference" validate:"omitempty,max=255"`
}

// ProgressPatchRequest is a partial update; absent fields stay untouched
type ProgressPatchRequest struct {
	CourseID    uint                     `json:"course_id" validate:"required"`
	Progress    *int                     `json:"progress" validate:"omitempty,min=0,max=100"`
	Status      *models.EnrollmentStatus `json:"status" validate:"omitempty,enrollment_status"`
	Score       *float64                 `json:"score" validate:"omitempty,min=0,max=100"`
	ModuleIndex *int                     `json:"module_idx" validate:"omitempty,min=0"`
	LessonIndex *int                     `json:"lesson_idx" validate:"omitempty,min=0"`
}

// VerifyPaymentRequest confirms a checkout session and enrolls on success
type VerifyPaymentRequest struct {
	SessionID string `json:"session_id" validate:"required,max=255"`
	CourseID  uint   `json:"course_id" validate:"required"`
}

// CheckoutRequest starts a hosted checkout for a priced course
type CheckoutRequest struct {
	CourseID uint `json:"course_id" validate:"required"`
}

// CourseCreateRequest creates a catalog entry
type CourseCreateRequest struct {
	Title       string             `json:"title" validate:"required,course_title"`
	Description string             `json:"description" validate:"max=5000"`
	Price       decimal.Decimal    `json:"price" validate:"min=0"`
	Category    string             `json:"category" validate:"max=100"`
	Curriculum  *models.Curriculum `json:"curriculum"`
	IsActive    *bool              `json:"is_active"`
}

// CourseUpdateRequest is a partial catalog update
type CourseUpdateRequest struct {
	Title       *string            `json:"title" validate:"omitempty,course_title"`
	Description *string            `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal   `json:"price" validate:"omitempty,min=0"`
	Category    *string            `json:"category" validate:"omitempty,max=100"`
	Curriculum  *models.Curriculum `json:"curriculum"`
	IsActive    *bool              `json:"is_active"`
}

// ProfileUpdateRequest edits the caller's own profile
type ProfileUpdateRequest struct {
	FullName string `json:"full_name" validate:"required,min=1,max=100"`
}

// BanUserRequest bans for Days days; zero or absent lifts the ban
type BanUserRequest struct {
	Days *int `json:"days" validate:"omitempty,min=0,max=3650"`
}

// UpdateRoleRequest sets the admin capability of a user
type UpdateRoleRequest struct {
	IsAdmin bool `json:"is_admin"`
}
