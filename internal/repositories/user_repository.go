package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
)

// UserRepository interface for account operations
type UserRepository interface {
	// CreateIfAbsent inserts the user unless the id exists and returns the stored row
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, user *models.User) (*models.User, bool, error)
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)

	// List and search operations
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	// Mutations
	UpdateName(ctx context.Context, tx *gorm.DB, id string, fullName string) error
	SetBanExpiry(ctx context.Context, tx *gorm.DB, id string, until *time.Time) error
	SetRole(ctx context.Context, tx *gorm.DB, id string, role models.UserRole) error
	SetDeleted(ctx context.Context, tx *gorm.DB, id string, deleted bool) error

	// Statistics
	CountStudents(ctx context.Context, tx *gorm.DB) (int64, error)
}
