package services

import (
	"errors"

	"campus-news-api/models"
	"campus-news-api/repositories"

	"gorm.io/gorm"
)

type ArticleService interface {
	CreateArticle(req models.CreateArticleRequest, author *models.User) (*models.Article, error)
	GetArticle(id uint, viewer *models.User, isPublic bool) (*models.Article, error)
	GetArticles(params models.ArticleListParams, isPublic bool) ([]models.Article, int64, error)
	MyArticles(authorID uint) ([]models.Article, error)
}

type articleService struct {
	articleRepo  repositories.ArticleRepository
	categoryRepo repositories.CategoryRepository
}

func NewArticleService(articleRepo repositories.ArticleRepository, categoryRepo repositories.CategoryRepository) ArticleService {
	return &articleService{
		articleRepo:  articleRepo,
		categoryRepo: categoryRepo,
	}
}

// CreateArticle stores a new draft for an author with create-content
// capability. Drafts enter the lifecycle via ModerationService.Submit.
func (s *articleService) CreateArticle(req models.CreateArticleRequest, author *models.User) (*models.Article, error) {
	caps := models.ResolveCapabilities(author)
	if !caps.Has(models.CapCreateContent) && !caps.Has(models.CapManageAll) {
		return nil, &models.PermissionDeniedError{Capability: models.CapCreateContent}
	}

	if _, err := s.categoryRepo.GetByID(req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.ValidationError{Field: "category_id", Message: "unknown category"}
		}
		return nil, err
	}

	importance := req.Importance
	if importance == "" {
		importance = models.ImportanceMedium
	}

	article := &models.Article{
		AuthorID:            author.ID,
		DraftTitle:          req.Title,
		DraftContent:        req.Content,
		CategoryID:          req.CategoryID,
		Importance:          importance,
		TargetProgram:       req.TargetProgram,
		Status:              models.StatusDraft,
		DesiredPublishStart: req.DesiredPublishStart,
		ExpiryDate:          req.ExpiryDate,
	}

	if err := s.articleRepo.Create(article); err != nil {
		return nil, err
	}

	return s.articleRepo.GetByID(article.ID)
}

func (s *articleService) GetArticle(id uint, viewer *models.User, isPublic bool) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	// Unpublished articles do not exist as far as the public surface is
	// concerned.
	if isPublic && article.Status != models.StatusPublished {
		return nil, gorm.ErrRecordNotFound
	}

	if !isPublic && article.Status != models.StatusPublished {
		caps := models.ResolveCapabilities(viewer)
		if article.AuthorID != viewer.ID && !caps.Has(models.CapModerate) && !caps.Has(models.CapManageAll) {
			return nil, &models.PermissionDeniedError{Capability: models.CapModerate}
		}
	}

	return article, nil
}

func (s *articleService) GetArticles(params models.ArticleListParams, isPublic bool) ([]models.Article, int64, error) {
	return s.articleRepo.GetList(params, isPublic)
}

func (s *articleService) MyArticles(authorID uint) ([]models.Article, error) {
	return s.articleRepo.ListByAuthor(authorID)
}
