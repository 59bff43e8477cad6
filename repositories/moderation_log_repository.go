package repositories

import (
	"campus-news-api/models"

	"gorm.io/gorm"
)

// ModerationLogRepository is append-and-read only: audit rows are never
// updated or deleted.
type ModerationLogRepository interface {
	Append(entry *models.ModerationLog) error
	ListByArticle(articleID uint) ([]models.ModerationLog, error)
}

type moderationLogRepository struct {
	db *gorm.DB
}

func NewModerationLogRepository(db *gorm.DB) ModerationLogRepository {
	return &moderationLogRepository{db: db}
}

func (r *moderationLogRepository) Append(entry *models.ModerationLog) error {
	return r.db.Create(entry).Error
}

func (r *moderationLogRepository) ListByArticle(articleID uint) ([]models.ModerationLog, error) {
	var entries []models.ModerationLog
	err := r.db.Where("article_id = ?", articleID).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}
