package postgres

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/repositories"
)

// handleDBError maps gorm errors onto repository sentinels and adds context
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", operation, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w: %w", operation, repositories.ErrDuplicate, err)
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}

// applyPaginationAndSort applies pagination and a whitelisted sort column
func applyPaginationAndSort(query *gorm.DB, sortKeyToColumn map[string]string, defaultColumn, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	column, ok := sortKeyToColumn[sortBy]
	if !ok {
		column = defaultColumn
	}

	order := "DESC"
	if sortOrder == "asc" || sortOrder == "ASC" {
		order = "ASC"
	}

	query = query.Order(fmt.Sprintf("%s %s", column, order))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

// likePattern builds the argument for LOWER(column) LIKE ?
func likePattern(q string) string {
	return "%" + strings.ToLower(q) + "%"
}
