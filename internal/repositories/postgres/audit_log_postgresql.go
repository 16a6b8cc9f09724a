package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type AuditLogPostgreSQL struct {
	db *gorm.DB
}

func NewAuditLogPostgreSQL(db *gorm.DB) repositories.AuditLogRepository {
	return &AuditLogPostgreSQL{db: db}
}

func (a *AuditLogPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AuditLogPostgreSQL) Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	if err := a.getDB(tx).WithContext(ctx).Create(entry).Error; err != nil {
		return handleDBError(err, "create audit log")
	}
	return nil
}

// List returns the most recent entries first
func (a *AuditLogPostgreSQL) List(ctx context.Context, tx *gorm.DB, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}

	var entries []*models.AuditLog
	err := a.getDB(tx).WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, handleDBError(err, "list audit logs")
	}
	return entries, nil
}
