package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	// Unique among accounts that have one; identities without an email are
	// stored with an empty string.
	Email    string   `json:"email" gorm:"uniqueIndex:idx_users_email,where:email <> '';not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:20;default:student"`

	// Status. Users are never hard-deleted.
	IsDeleted bool       `json:"is_deleted" gorm:"not null;default:false;index"`
	BanExpiry *time.Time `json:"ban_expiry,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsBanned reports whether a ban is still running at now.
func (u *User) IsBanned(now time.Time) bool {
	return u.BanExpiry != nil && u.BanExpiry.After(now)
}

// CanAuthenticate is false for deleted or currently banned accounts.
func (u *User) CanAuthenticate(now time.Time) bool {
	return !u.IsDeleted && !u.IsBanned(now)
}
