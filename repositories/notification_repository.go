package repositories

import (
	"campus-news-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository interface {
	// RecordAttempt claims the (user, article, channel) ledger key with a
	// pending row. A previously failed row is reclaimed; a sent row is not,
	// which deduplicates concurrent or repeated sends for the same key.
	// It reports whether the claim succeeded.
	RecordAttempt(n *models.Notification) (bool, error)
	MarkOutcome(n *models.Notification, status models.NotificationStatus) error
	HasSent(userID, articleID uint, channel models.NotificationChannel) (bool, error)
	SentArticleIDs(userID uint, channel models.NotificationChannel) (map[uint]bool, error)
	ListByUser(userID uint) ([]models.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) RecordAttempt(n *models.Notification) (bool, error) {
	n.Status = models.NotificationPending
	res := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "article_id"},
			{Name: "channel"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":  models.NotificationPending,
			"title":   n.Title,
			"message": n.Message,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Neq{
				Column: clause.Column{Table: "notifications", Name: "status"},
				Value:  models.NotificationSent,
			},
		}},
	}).Create(n)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *notificationRepository) MarkOutcome(n *models.Notification, status models.NotificationStatus) error {
	n.Status = status
	return r.db.Model(&models.Notification{}).
		Where("user_id = ? AND article_id = ? AND channel = ?", n.UserID, n.ArticleID, n.Channel).
		Updates(map[string]interface{}{
			"status":  status,
			"sent_at": n.SentAt,
		}).Error
}

func (r *notificationRepository) HasSent(userID, articleID uint, channel models.NotificationChannel) (bool, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND article_id = ? AND channel = ? AND status = ?",
			userID, articleID, channel, models.NotificationSent).
		Count(&count).Error
	return count > 0, err
}

func (r *notificationRepository) SentArticleIDs(userID uint, channel models.NotificationChannel) (map[uint]bool, error) {
	var ids []uint
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND channel = ? AND status = ?", userID, channel, models.NotificationSent).
		Pluck("article_id", &ids).Error
	if err != nil {
		return nil, err
	}
	sent := make(map[uint]bool, len(ids))
	for _, id := range ids {
		sent[id] = true
	}
	return sent, nil
}

func (r *notificationRepository) ListByUser(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&notifications).Error
	return notifications, err
}
