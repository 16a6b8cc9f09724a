package repositories

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/SAP-F-2025/course-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Query          string // Search query for name or email
	IncludeDeleted bool
	Limit          int
	Offset         int
}

type CourseFilters struct {
	Category *string `json:"category"`
	// PublicOnly restricts to active, non-deleted courses
	PublicOnly     bool   `json:"public_only"`
	IncludeDeleted bool   `json:"include_deleted"`
	Query          string `json:"query"`
	Limit          int    `json:"limit"`
	Offset         int    `json:"offset"`
	SortBy         string `json:"sort_by"`    // "created_at", "title", "price"
	SortOrder      string `json:"sort_order"` // "asc", "desc"
}

type EnrollmentFilters struct {
	UserID   *string                  `json:"user_id"`
	CourseID *uint                    `json:"course_id"`
	Status   *models.EnrollmentStatus `json:"status"`
	// PaidOnly keeps enrollments created through a verified payment
	PaidOnly  bool       `json:"paid_only"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`
	SortOrder string     `json:"sort_order"`
}

// ===== SHARED HELPER STRUCTS =====

// ProgressUpdate carries only the fields present in a progress patch
type ProgressUpdate struct {
	Progress        *int
	Status          *models.EnrollmentStatus
	Score           *float64
	LastModuleIndex *int
	LastLessonIndex *int
}

func (u ProgressUpdate) IsEmpty() bool {
	return u.Progress == nil && u.Status == nil && u.Score == nil &&
		u.LastModuleIndex == nil && u.LastLessonIndex == nil
}

// Columns returns the column updates for the present fields
func (u ProgressUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Progress != nil {
		cols["progress"] = *u.Progress
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.Score != nil {
		cols["score"] = *u.Score
	}
	if u.LastModuleIndex != nil {
		cols["last_module_index"] = *u.LastModuleIndex
	}
	if u.LastLessonIndex != nil {
		cols["last_lesson_index"] = *u.LastLessonIndex
	}
	return cols
}

// CertificateGrant is the one-time certification stamp of an enrollment
type CertificateGrant struct {
	CertificateID  string
	CompletionDate time.Time
	Score          *float64
}

// ===== SHARED STATISTICS STRUCTS =====

type PlatformStats struct {
	Revenue        decimal.Decimal `json:"revenue"`
	Students       int64           `json:"students"`
	Courses        int64           `json:"courses"`
	Enrollments    int64           `json:"enrollments"`
	Certifications int64           `json:"certifications"`
}
