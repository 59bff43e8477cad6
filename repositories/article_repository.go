package repositories

import (
	"fmt"
	"time"

	"campus-news-api/models"

	"gorm.io/gorm"
)

type ArticleRepository interface {
	Create(article *models.Article) error
	GetByID(id uint) (*models.Article, error)
	GetList(params models.ArticleListParams, isPublic bool) ([]models.Article, int64, error)
	ListPending() ([]models.Article, error)
	ListByAuthor(authorID uint) ([]models.Article, error)
	PublishedSince(since time.Time) ([]models.Article, error)
	Update(article *models.Article) error
	// TransitionStatus applies updates only while the article still sits in
	// the expected status. It reports whether the write won the race.
	TransitionStatus(id uint, expected models.ArticleStatus, updates map[string]interface{}) (bool, error)
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(article *models.Article) error {
	return r.db.Create(article).Error
}

func (r *articleRepository) GetByID(id uint) (*models.Article, error) {
	var article models.Article
	err := r.db.Preload("Author").
		Preload("Category").
		Preload("Moderator").
		First(&article, id).Error
	return &article, err
}

func (r *articleRepository) GetList(params models.ArticleListParams, isPublic bool) ([]models.Article, int64, error) {
	var articles []models.Article
	var total int64

	query := r.db.Model(&models.Article{}).Preload("Author").Preload("Category")

	if isPublic {
		now := time.Now()
		query = query.Where("status = ?", models.StatusPublished).
			Where("expiry_date IS NULL OR expiry_date > ?", now)
	} else if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	if params.Importance != "" {
		query = query.Where("importance = ?", params.Importance)
	}
	if params.Program != "" {
		query = query.Where("target_program = ?", params.Program)
	}
	if params.CategoryID > 0 {
		query = query.Where("category_id = ?", params.CategoryID)
	}
	if params.AuthorID > 0 {
		query = query.Where("author_id = ?", params.AuthorID)
	}

	query.Count(&total)

	sortBy := params.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := params.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("articles.%s %s", sortBy, sortOrder))

	offset := (params.Page - 1) * params.Limit
	err := query.Offset(offset).Limit(params.Limit).Find(&articles).Error

	return articles, total, err
}

func (r *articleRepository) ListPending() ([]models.Article, error) {
	var articles []models.Article
	err := r.db.Where("status = ?", models.StatusPending).
		Preload("Author").
		Preload("Category").
		Order("created_at desc").
		Find(&articles).Error
	return articles, err
}

func (r *articleRepository) ListByAuthor(authorID uint) ([]models.Article, error) {
	var articles []models.Article
	err := r.db.Where("author_id = ?", authorID).
		Preload("Category").
		Preload("Moderator").
		Order("created_at desc").
		Find(&articles).Error
	return articles, err
}

func (r *articleRepository) PublishedSince(since time.Time) ([]models.Article, error) {
	var articles []models.Article
	err := r.db.Where("status = ? AND publish_date >= ?", models.StatusPublished, since).
		Preload("Category").
		Order("publish_date desc").
		Find(&articles).Error
	return articles, err
}

func (r *articleRepository) Update(article *models.Article) error {
	return r.db.Save(article).Error
}

func (r *articleRepository) TransitionStatus(id uint, expected models.ArticleStatus, updates map[string]interface{}) (bool, error) {
	res := r.db.Model(&models.Article{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
