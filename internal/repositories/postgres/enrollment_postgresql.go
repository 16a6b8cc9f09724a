package postgres

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (e *EnrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

// ===== CREATION =====

// CreateIfAbsent relies on the (user_id, course_id) unique index instead of a
// check-then-insert, so concurrent duplicates collapse onto one row.
func (e *EnrollmentPostgreSQL) CreateIfAbsent(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) (*models.Enrollment, bool, error) {
	db := e.getDB(tx).WithContext(ctx)

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(enrollment)
	if result.Error != nil {
		return nil, false, handleDBError(result.Error, "create enrollment")
	}
	if result.RowsAffected == 1 {
		return enrollment, true, nil
	}

	existing, err := e.GetByUserAndCourse(ctx, tx, enrollment.UserID, enrollment.CourseID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// ===== READS =====

func (e *EnrollmentPostgreSQL) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := e.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, handleDBError(err, "get enrollment")
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) LockByUserAndCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := e.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, handleDBError(err, "lock enrollment")
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) GetByCertificateID(ctx context.Context, tx *gorm.DB, certificateID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := e.getDB(tx).WithContext(ctx).
		Preload("User").
		Preload("Course").
		Where("certificate_id = ?", certificateID).
		First(&enrollment).Error
	if err != nil {
		return nil, handleDBError(err, "get enrollment by certificate")
	}
	return &enrollment, nil
}

// ===== MUTATIONS =====

func (e *EnrollmentPostgreSQL) ApplyProgress(ctx context.Context, tx *gorm.DB, id uint, update repositories.ProgressUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	result := e.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("id = ?", id).
		Updates(update.Columns())
	if result.Error != nil {
		return handleDBError(result.Error, "apply progress")
	}
	if result.RowsAffected == 0 {
		return handleDBError(repositories.ErrNotFound, "apply progress")
	}
	return nil
}

// AssignCertificate is a conditional update on certificate_id IS NULL, so at
// most one caller ever stamps a given row.
func (e *EnrollmentPostgreSQL) AssignCertificate(ctx context.Context, tx *gorm.DB, id uint, grant repositories.CertificateGrant) (bool, error) {
	result := e.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("id = ? AND certificate_id IS NULL", id).
		Updates(map[string]interface{}{
			"certificate_id":  grant.CertificateID,
			"completion_date": grant.CompletionDate,
			"certified_score": grant.Score,
		})
	if result.Error != nil {
		return false, handleDBError(result.Error, "assign certificate")
	}
	return result.RowsAffected == 1, nil
}

// ===== QUERIES =====

func (e *EnrollmentPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	err := e.getDB(tx).WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, handleDBError(err, "list enrollments by user")
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	var enrollments []*models.Enrollment
	var total int64

	query := e.applyFilters(e.getDB(tx).WithContext(ctx).Model(&models.Enrollment{}), filters)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count enrollments")
	}

	query = applyPaginationAndSort(query, map[string]string{
		"enrolled_at": "enrolled_at",
		"progress":    "progress",
		"status":      "status",
		"id":          "id",
	}, "enrolled_at", filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("User").Preload("Course").Find(&enrollments).Error; err != nil {
		return nil, 0, handleDBError(err, "list enrollments")
	}

	return enrollments, total, nil
}

func (e *EnrollmentPostgreSQL) CertificateIDsByUser(ctx context.Context, tx *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := e.getDB(tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND certificate_id IS NOT NULL", userID).
		Pluck("certificate_id", &ids).Error
	if err != nil {
		return nil, handleDBError(err, "list certificate ids")
	}
	return ids, nil
}

// ===== STATISTICS =====

func (e *EnrollmentPostgreSQL) Count(ctx context.Context, tx *gorm.DB, certifiedOnly bool) (int64, error) {
	var count int64
	query := e.getDB(tx).WithContext(ctx).Model(&models.Enrollment{})
	if certifiedOnly {
		query = query.Where("certificate_id IS NOT NULL")
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count enrollments")
	}
	return count, nil
}

// Revenue sums the current price of every course over paid enrollments
func (e *EnrollmentPostgreSQL) Revenue(ctx context.Context, tx *gorm.DB) (decimal.Decimal, error) {
	var revenue decimal.NullDecimal
	err := e.getDB(tx).WithContext(ctx).
		Table("enrollments").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("enrollments.payment_reference IS NOT NULL").
		Select("SUM(courses.price)").
		Row().
		Scan(&revenue)
	if err != nil {
		return decimal.Zero, handleDBError(err, "sum revenue")
	}
	if !revenue.Valid {
		return decimal.Zero, nil
	}
	return revenue.Decimal, nil
}

func (e *EnrollmentPostgreSQL) applyFilters(query *gorm.DB, filters repositories.EnrollmentFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.PaidOnly {
		query = query.Where("payment_reference IS NOT NULL")
	}
	if filters.DateFrom != nil {
		query = query.Where("enrolled_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("enrolled_at <= ?", *filters.DateTo)
	}
	return query
}
