package models

import "time"

type AuditAction string

const (
	AuditUserBanned     AuditAction = "user.banned"
	AuditUserUnbanned   AuditAction = "user.unbanned"
	AuditUserRole       AuditAction = "user.role_changed"
	AuditUserDeleted    AuditAction = "user.deleted"
	AuditUserRestored   AuditAction = "user.restored"
	AuditCourseCreated  AuditAction = "course.created"
	AuditCourseUpdated  AuditAction = "course.updated"
	AuditCourseArchived AuditAction = "course.archived"
)

type AuditLog struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	ActorID    string      `json:"actor_id" gorm:"size:255;index"`
	ActorEmail string      `json:"actor_email" gorm:"size:255"`
	Action     AuditAction `json:"action" gorm:"size:100;not null"`
	Details    string      `json:"details" gorm:"type:text"`
	CreatedAt  time.Time   `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
