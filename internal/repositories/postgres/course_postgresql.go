package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CourseRepository {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &CoursePostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

// Create creates a course and invalidates cached listings
func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := c.getDB(tx).WithContext(ctx).Create(course).Error; err != nil {
		return handleDBError(err, "create course")
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID)
	return nil
}

// GetByID retrieves a course, soft-deleted ones included. Reads outside a
// transaction go through the cache.
func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	fetch := func() (interface{}, error) {
		var course models.Course
		if err := c.getDB(tx).WithContext(ctx).First(&course, id).Error; err != nil {
			return nil, handleDBError(err, "get course by id")
		}
		return &course, nil
	}

	if tx != nil {
		course, err := fetch()
		if err != nil {
			return nil, err
		}
		return course.(*models.Course), nil
	}

	var course models.Course
	err := c.cacheManager.Course.CacheOrExecute(ctx, cache.CourseKey(id), &course, cache.CourseCacheConfig.TTL, fetch)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Update applies column updates and invalidates the course cache
func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	result := c.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(updates)
	if result.Error != nil {
		return handleDBError(result.Error, "update course")
	}
	if result.RowsAffected == 0 {
		return handleDBError(repositories.ErrNotFound, "update course")
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, id)
	return nil
}

// SoftDelete hides a course from the catalog; enrollments keep pointing at it
func (c *CoursePostgreSQL) SoftDelete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := c.getDB(tx).WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"is_deleted": true, "is_active": false})
	if result.Error != nil {
		return handleDBError(result.Error, "delete course")
	}
	if result.RowsAffected == 0 {
		return handleDBError(repositories.ErrNotFound, "delete course")
	}

	cache.InvalidateCourseCache(ctx, c.cacheManager, id)
	return nil
}

type courseListResult struct {
	Courses []*models.Course `json:"courses"`
	Total   int64            `json:"total"`
}

// List returns a filtered page of courses; public listings are cached
func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	fetch := func() (interface{}, error) {
		var courses []*models.Course
		var total int64

		query := c.applyFilters(c.getDB(tx).WithContext(ctx).Model(&models.Course{}), filters)
		if err := query.Count(&total).Error; err != nil {
			return nil, handleDBError(err, "count courses")
		}

		query = applyPaginationAndSort(query, map[string]string{
			"created_at": "created_at",
			"title":      "title",
			"price":      "price",
			"id":         "id",
		}, "created_at", filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

		if err := query.Find(&courses).Error; err != nil {
			return nil, handleDBError(err, "list courses")
		}
		return &courseListResult{Courses: courses, Total: total}, nil
	}

	if tx != nil || !filters.PublicOnly || filters.Query != "" {
		result, err := fetch()
		if err != nil {
			return nil, 0, err
		}
		res := result.(*courseListResult)
		return res.Courses, res.Total, nil
	}

	category := ""
	if filters.Category != nil {
		category = *filters.Category
	}
	key := fmt.Sprintf("list:public:%s:%s:%s:%d:%d", category, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var res courseListResult
	if err := c.cacheManager.Course.CacheOrExecute(ctx, key, &res, cache.CourseCacheConfig.TTL, fetch); err != nil {
		return nil, 0, err
	}
	return res.Courses, res.Total, nil
}

func (c *CoursePostgreSQL) Count(ctx context.Context, tx *gorm.DB, publicOnly bool) (int64, error) {
	var count int64
	query := c.applyFilters(c.getDB(tx).WithContext(ctx).Model(&models.Course{}), repositories.CourseFilters{PublicOnly: publicOnly})
	if err := query.Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count courses")
	}
	return count, nil
}

func (c *CoursePostgreSQL) applyFilters(query *gorm.DB, filters repositories.CourseFilters) *gorm.DB {
	if filters.PublicOnly {
		query = query.Where("is_active = ? AND is_deleted = ?", true, false)
	} else if !filters.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Query != "" {
		pattern := likePattern(filters.Query)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	return query
}
