package models

import (
	"time"
)

type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelPush  NotificationChannel = "push"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// Notification is the delivery ledger. The (user, article, channel) triple
// is unique and doubles as the deduplication key: one sent row per triple,
// whether it came from the immediate path or a digest.
type Notification struct {
	ID        uint                `json:"id" gorm:"primarykey"`
	UserID    uint                `json:"user_id" gorm:"not null;uniqueIndex:idx_notif_dedup"`
	User      User                `json:"-" gorm:"foreignKey:UserID"`
	ArticleID uint                `json:"article_id" gorm:"not null;uniqueIndex:idx_notif_dedup"`
	Article   Article             `json:"-" gorm:"foreignKey:ArticleID"`
	Channel   NotificationChannel `json:"channel" gorm:"not null;uniqueIndex:idx_notif_dedup"`
	Status    NotificationStatus  `json:"status" gorm:"default:'pending'"`
	Title     string              `json:"title"`
	Message   string              `json:"message" gorm:"type:text"`
	SentAt    *time.Time          `json:"sent_at"`
	CreatedAt time.Time           `json:"created_at"`
}
