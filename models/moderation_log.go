package models

import "time"

type ModerationAction string

const (
	ActionSubmitted   ModerationAction = "submitted"
	ActionApproved    ModerationAction = "approved"
	ActionRejected    ModerationAction = "rejected"
	ActionInvalidated ModerationAction = "invalidated"
	ActionPublished   ModerationAction = "published"
)

// ModerationLog is the append-only audit trail of lifecycle transitions.
// Rows are written once per transition and never updated or deleted.
type ModerationLog struct {
	ID              uint             `json:"id" gorm:"primarykey"`
	ArticleID       uint             `json:"article_id" gorm:"not null;index"`
	Article         Article          `json:"-" gorm:"foreignKey:ArticleID"`
	ActorID         uint             `json:"actor_id" gorm:"not null"`
	Actor           User             `json:"-" gorm:"foreignKey:ActorID"`
	Action          ModerationAction `json:"action" gorm:"not null"`
	Reason          string           `json:"reason"`
	PreviousContent string           `json:"previous_content" gorm:"type:text"`
	NewContent      string           `json:"new_content" gorm:"type:text"`
	CreatedAt       time.Time        `json:"created_at"`
}
