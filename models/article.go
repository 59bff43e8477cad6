package models

import (
	"time"

	"gorm.io/gorm"
)

type ArticleStatus string

const (
	StatusDraft       ArticleStatus = "draft"
	StatusPending     ArticleStatus = "pending"
	StatusPublished   ArticleStatus = "published"
	StatusRejected    ArticleStatus = "rejected"
	StatusInvalidated ArticleStatus = "invalidated"
)

type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
	ImportanceUrgent Importance = "urgent"
)

type Article struct {
	ID       uint `json:"id" gorm:"primarykey"`
	AuthorID uint `json:"author_id" gorm:"not null"`
	Author   User `json:"author" gorm:"foreignKey:AuthorID"`

	// Author-submitted content.
	DraftTitle   string `json:"draft_title" gorm:"not null"`
	DraftContent string `json:"draft_content" gorm:"type:text"`

	// Moderator-approved content; may differ from the draft.
	FinalTitle   string `json:"final_title"`
	FinalContent string `json:"final_content" gorm:"type:text"`

	CategoryID    uint          `json:"category_id" gorm:"not null"`
	Category      Category      `json:"category" gorm:"foreignKey:CategoryID"`
	Importance    Importance    `json:"importance" gorm:"default:'medium'"`
	TargetProgram string        `json:"target_program"`
	Status        ArticleStatus `json:"status" gorm:"default:'draft';index"`

	WrittenAt           *time.Time `json:"written_at"`
	DesiredPublishStart *time.Time `json:"desired_publish_start"`
	PublishDate         *time.Time `json:"publish_date" gorm:"index"`
	ExpiryDate          *time.Time `json:"expiry_date"`

	// Moderation
	ModeratorID       *uint      `json:"moderator_id"`
	Moderator         *User      `json:"moderator,omitempty" gorm:"foreignKey:ModeratorID"`
	ModeratedAt       *time.Time `json:"moderated_at"`
	ModeratorApproved bool       `json:"moderator_approved" gorm:"default:false"`
	ModerationComment string     `json:"moderation_comment"`

	// Invalidation
	InvalidatedByID    *uint      `json:"invalidated_by_id"`
	InvalidatedBy      *User      `json:"invalidated_by,omitempty" gorm:"foreignKey:InvalidatedByID"`
	InvalidationReason string     `json:"invalidation_reason"`
	InvalidatedAt      *time.Time `json:"invalidated_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Title returns the reader-facing title: final when moderated, draft otherwise.
func (a *Article) Title() string {
	if a.FinalTitle != "" {
		return a.FinalTitle
	}
	return a.DraftTitle
}

// Content returns the reader-facing body.
func (a *Article) Content() string {
	if a.FinalContent != "" {
		return a.FinalContent
	}
	return a.DraftContent
}
