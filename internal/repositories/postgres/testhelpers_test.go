package postgres

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/pkg"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, pkg.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{ID: id, Email: id + "@example.com", FullName: "User " + id, Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, title, price string) *models.Course {
	t.Helper()
	course := &models.Course{Title: title, Price: decimal.RequireFromString(price), Category: "General", IsActive: true}
	require.NoError(t, db.Create(course).Error)
	return course
}
