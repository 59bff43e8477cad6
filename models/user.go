package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole is the legacy flat role kept for accounts created before the
// structured Role table existed. When OrganizationalRoleID is set, the
// structured role wins.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleModerator UserRole = "moderator"
	RolePublisher UserRole = "publisher"
	RoleTeacher   UserRole = "teacher"
	RoleStudent   UserRole = "student"
)

type NotificationFrequency string

const (
	FrequencyImmediate NotificationFrequency = "immediate"
	FrequencyDaily     NotificationFrequency = "daily"
	FrequencyWeekly    NotificationFrequency = "weekly"
	FrequencyDisabled  NotificationFrequency = "disabled"
)

type User struct {
	ID       uint   `json:"id" gorm:"primarykey"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`

	Role                 UserRole `json:"role" gorm:"default:'student'"`
	OrganizationalRoleID *uint    `json:"organizational_role_id"`
	OrganizationalRole   *Role    `json:"organizational_role,omitempty" gorm:"foreignKey:OrganizationalRoleID"`

	// Audience targeting: empty program means no restriction.
	Program string `json:"program"`

	// Notification preferences
	EmailEnabled bool                  `json:"email_enabled" gorm:"default:true"`
	PushEnabled  bool                  `json:"push_enabled" gorm:"default:true"`
	Frequency    NotificationFrequency `json:"notification_frequency" gorm:"default:'immediate'"`
	PushToken    string                `json:"-"`

	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
