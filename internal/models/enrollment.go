package models

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentInProgress EnrollmentStatus = "in-progress"
	EnrollmentCompleted  EnrollmentStatus = "completed"
)

// AdminPreviewCertificate marks the synthetic view returned to admins. It is
// never stored and never verifies.
const AdminPreviewCertificate = "ADMIN_PREVIEW"

type Enrollment struct {
	ID       uint             `json:"id" gorm:"primaryKey"`
	UserID   string           `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_enrollment_user_course"`
	CourseID uint             `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course;index"`
	Status   EnrollmentStatus `json:"status" gorm:"not null;size:50;default:in-progress"`
	Progress int              `json:"progress" gorm:"not null;default:0"`
	Score    *float64         `json:"score"`

	// Bookmark
	LastModuleIndex int `json:"last_module_index" gorm:"not null;default:0"`
	LastLessonIndex int `json:"last_lesson_index" gorm:"not null;default:0"`

	// Certification fields move once from unset to set and are frozen afterwards.
	CertificateID  *string    `json:"certificate_id" gorm:"size:50;uniqueIndex"`
	CertifiedScore *float64   `json:"certified_score,omitempty"`
	CompletionDate *time.Time `json:"completion_date"`

	PaymentReference *string   `json:"payment_reference,omitempty" gorm:"size:255;index"`
	EnrolledAt       time.Time `json:"enrolled_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at"`

	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) IsCertified() bool {
	return e.CertificateID != nil && *e.CertificateID != ""
}

func (e *Enrollment) IsCompleted() bool {
	return e.Status == EnrollmentCompleted
}

// NeedsCertificate is true when the row reached completion but was never minted.
func (e *Enrollment) NeedsCertificate() bool {
	return e.IsCompleted() && !e.IsCertified()
}
