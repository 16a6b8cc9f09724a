package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
)

// CourseRepository interface for catalog operations
type CourseRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, id uint, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, tx *gorm.DB, id uint) error

	// List operations
	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)
	Count(ctx context.Context, tx *gorm.DB, publicOnly bool) (int64, error)
}
