package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

func (u *UserPostgreSQL) CreateIfAbsent(ctx context.Context, tx *gorm.DB, user *models.User) (*models.User, bool, error) {
	db := u.getDB(tx).WithContext(ctx)

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(user)
	if result.Error != nil {
		return nil, false, handleDBError(result.Error, "create user")
	}
	if result.RowsAffected == 1 {
		return user, true, nil
	}

	// Lost to an existing row on id (or on email, which then fails the lookup)
	existing, err := u.GetByID(ctx, tx, user.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, false, handleDBError(repositories.ErrDuplicate, "create user")
		}
		return nil, false, err
	}
	return existing, false, nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by id")
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by email")
	}
	return &user, nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := u.getDB(tx).WithContext(ctx).Model(&models.User{})
	if !filters.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if filters.Query != "" {
		pattern := likePattern(filters.Query)
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count users")
	}

	query = applyPaginationAndSort(query, map[string]string{
		"created_at": "created_at",
		"full_name":  "full_name",
		"email":      "email",
	}, "created_at", "", "", filters.Limit, filters.Offset)

	if err := query.Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "list users")
	}

	return users, total, nil
}

func (u *UserPostgreSQL) UpdateName(ctx context.Context, tx *gorm.DB, id string, fullName string) error {
	return u.updateColumn(ctx, tx, id, "full_name", fullName, "update user name")
}

func (u *UserPostgreSQL) SetBanExpiry(ctx context.Context, tx *gorm.DB, id string, until *time.Time) error {
	return u.updateColumn(ctx, tx, id, "ban_expiry", until, "set user ban")
}

func (u *UserPostgreSQL) SetRole(ctx context.Context, tx *gorm.DB, id string, role models.UserRole) error {
	return u.updateColumn(ctx, tx, id, "role", role, "set user role")
}

func (u *UserPostgreSQL) SetDeleted(ctx context.Context, tx *gorm.DB, id string, deleted bool) error {
	return u.updateColumn(ctx, tx, id, "is_deleted", deleted, "set user deleted")
}

func (u *UserPostgreSQL) CountStudents(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND is_deleted = ?", models.RoleStudent, false).
		Count(&count).Error
	if err != nil {
		return 0, handleDBError(err, "count students")
	}
	return count, nil
}

func (u *UserPostgreSQL) updateColumn(ctx context.Context, tx *gorm.DB, id, column string, value interface{}, operation string) error {
	result := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return handleDBError(result.Error, operation)
	}
	if result.RowsAffected == 0 {
		return handleDBError(repositories.ErrNotFound, operation)
	}
	return nil
}
