package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
)

// EnrollmentRepository interface for enrollment and certification state
type EnrollmentRepository interface {
	// CreateIfAbsent inserts the enrollment unless (user, course) exists and
	// returns the stored row plus whether this call created it.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) (*models.Enrollment, bool, error)
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uint) (*models.Enrollment, error)
	// LockByUserAndCourse reads the row with SELECT ... FOR UPDATE; tx must be a transaction
	LockByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uint) (*models.Enrollment, error)
	GetByCertificateID(ctx context.Context, tx *gorm.DB, certificateID string) (*models.Enrollment, error)

	// Mutations
	ApplyProgress(ctx context.Context, tx *gorm.DB, id uint, update ProgressUpdate) error
	// AssignCertificate stamps the row only if it has no certificate yet and
	// reports whether this call won.
	AssignCertificate(ctx context.Context, tx *gorm.DB, id uint, grant CertificateGrant) (bool, error)

	// Query operations
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Enrollment, error)
	List(ctx context.Context, tx *gorm.DB, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)
	CertificateIDsByUser(ctx context.Context, tx *gorm.DB, userID string) ([]string, error)

	// Statistics
	Count(ctx context.Context, tx *gorm.DB, certifiedOnly bool) (int64, error)
	Revenue(ctx context.Context, tx *gorm.DB) (decimal.Decimal, error)
}

// AuditLogRepository records admin actions
type AuditLogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error
	List(ctx context.Context, tx *gorm.DB, limit int) ([]*models.AuditLog, error)
}
