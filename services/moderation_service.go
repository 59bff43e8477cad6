package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus-news-api/models"
	"campus-news-api/repositories"

	"go.uber.org/zap"
)

// Notifier is the slice of the notification engine the moderation workflow
// needs after a transition lands.
type Notifier interface {
	NotifyPublished(ctx context.Context, article *models.Article) (*models.NotifyResult, error)
	NotifyModerationOutcome(ctx context.Context, article *models.Article, action models.ModerationAction, reason string) error
}

type ModerationService interface {
	Submit(ctx context.Context, articleID uint, actor *models.User) (*models.Article, error)
	Approve(ctx context.Context, articleID uint, actor *models.User, req models.ApproveArticleRequest) (*models.Article, error)
	Reject(ctx context.Context, articleID uint, actor *models.User, reason string) (*models.Article, error)
	Invalidate(ctx context.Context, articleID uint, actor *models.User, reason string) (*models.Article, error)
	DirectPublish(ctx context.Context, articleID uint, actor *models.User) (*models.Article, error)
	ListPending(actor *models.User) ([]models.Article, error)
	History(articleID uint, actor *models.User) ([]models.ModerationLog, error)
}

type moderationService struct {
	articleRepo repositories.ArticleRepository
	logRepo     repositories.ModerationLogRepository
	notifier    Notifier
	logger      *zap.Logger
}

func NewModerationService(
	articleRepo repositories.ArticleRepository,
	logRepo repositories.ModerationLogRepository,
	notifier Notifier,
	logger *zap.Logger,
) ModerationService {
	return &moderationService{
		articleRepo: articleRepo,
		logRepo:     logRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// Submit moves the author's draft into the moderation queue. A rejected
// article goes back to pending the same way: the author edits and resubmits
// the same entity, and the previous verdict is cleared.
func (s *moderationService) Submit(ctx context.Context, articleID uint, actor *models.User) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(articleID)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != actor.ID {
		return nil, &models.PermissionDeniedError{Capability: "authorship of the article"}
	}
	if article.Status != models.StatusDraft && article.Status != models.StatusRejected {
		return nil, &models.IllegalTransitionError{From: article.Status, Event: "submit"}
	}

	updates := map[string]interface{}{
		"status": models.StatusPending,
	}
	if article.WrittenAt == nil {
		updates["written_at"] = time.Now()
	}
	if article.Status == models.StatusRejected {
		updates["moderator_id"] = nil
		updates["moderated_at"] = nil
		updates["moderator_approved"] = false
		updates["moderation_comment"] = ""
	}

	if err := s.apply(articleID, article.Status, "submit", updates); err != nil {
		return nil, err
	}

	updated, err := s.articleRepo.GetByID(articleID)
	if err != nil {
		return nil, err
	}

	s.audit(article, actor, models.ActionSubmitted, "", updated)
	s.notifyOutcome(ctx, updated, models.ActionSubmitted, "")

	return updated, nil
}

// Approve publishes a pending article. Final title/content default to the
// draft values when the moderator supplies no override.
func (s *moderationService) Approve(ctx context.Context, articleID uint, actor *models.User, req models.ApproveArticleRequest) (*models.Article, error) {
	caps := models.ResolveCapabilities(actor)
	if !caps.Has(models.CapModerate) && !caps.Has(models.CapManageAll) {
		return nil, &models.PermissionDeniedError{Capability: models.CapModerate}
	}

	article, err := s.articleRepo.GetByID(articleID)
	if err != nil {
		return nil, err
	}
	if article.Status != models.StatusPending {
		return nil, &models.IllegalTransitionError{From: article.Status, Event: "approve"}
	}

	finalTitle := strings.TrimSpace(req.FinalTitle)
	if finalTitle == "" {
		finalTitle = article.DraftTitle
	}
	finalContent := req.FinalContent
	if strings.TrimSpace(finalContent) == "" {
		finalContent = article.DraftContent
	}

	now := time.Now()
	publishDate := now
	if article.DesiredPublishStart != nil && article.DesiredPublishStart.Before(now) {
		publishDate = *article.DesiredPublishStart
	}

	updates := map[string]interface{}{
		"status":             models.StatusPublished,
		"final_title":        finalTitle,
		"final_content":      finalContent,
		"moderator_id":       actor.ID,
		"moderated_at":       now,
		"moderator_approved": true,
		"moderation_comment": req.Comment,
		"publish_date":       publishDate,
	}

	if err := s.apply(articleID, models.StatusPending, "approve", updates); err != nil {
		return nil, err
	}

	updated, err := s.articleRepo.GetByID(articleID)
	if err != nil {
		return nil, err
	}

	s.audit(article, actor, models.ActionApproved, req.Comment, updated)
	s.notifyOutcome(ctx, updated, models.ActionApproved, req.Comment)

	if _, err := s.notifier.NotifyPublished(ctx, updated); err != nil {
		// Fan-out problems never unwind an already-landed transition.
		s.logger.Error("publish notification fan-out failed",
			zap.Uint("article_id", updated.ID), zap.Error(err))
	}

	return updated, nil
}

// Reject sends a pending article back to its author with a mandatory reason.
func (s *moderationService) Reject(ctx context.Context, articleID uint, actor *models.User, reason string) (*models.Article, error) {
	caps := models.ResolveCapabilities(actor)
	if !caps.Has(models.CapModerate) && !caps.Has(models.CapManageAll) {
		return nil, &models.PermissionDeniedError{Capability: models.CapModerate}
	}
	if strings.TrimSpace(reason) == "" {
		return nil, &models.ValidationError{Field: "reason", Message: "a rejection reason is required"}
	}

	article, err := s.articleRepo.GetByID(articleID)
	if err != nil {
		return nil, err
	}
	if article.Status != models.StatusPending {
		return nil, &models.IllegalTransitionError{From: article.Status, Event: "reject"}
	}

	updates := map[string]interface{}{
		"status":             models.StatusRejected,
		"moderator_id":       actor.ID,
		"moderated_at":       time.Now(),
		"moderator_approved": false,
		"moderation_comment": reason,
	}

	if err := s.apply(articleID, models.StatusPending, "reject", updates); err != nil {
		return nil, err
	}

	updated, err := s.articleRepo.GetByID(articleID)
	if err != nil {
		return nil, err
	}

	s.audit(article, actor, models.ActionRejected, reason, updated)
	s.notifyOutcome(ctx, updated, models.ActionRejected, reason)

	return updated, nil
}

// Invalidate pulls a published article. Terminal: nothing transitions out of
// invalidated.
func (s *moderationService) Invalidate(ctx context.Context, articleID uint, actor *models.User, reason string) (*models.Article, error) {
	caps := models.ResolveCapabilities(actor)
	if !caps.Has(models.CapManageAll) {
		return nil, &models.PermissionDeniedError{Capability: models.CapManageAll}
	}
	if strings.TrimSpace(reason) == "" {
		return nil, &models.ValidationError{Field: "reason", Message: "an invalidation reason is required"}
	}

	article, err := s.articleRepo.GetByID(articleID)
	if err != nil {
		return nil, err
	}
	if article.Status != models.StatusPublished {
		return nil, &models.IllegalTransitionError{From: article.Status, Event: "invalidate"}
	}

	updates := map[string]interface{}{
		"status":              models.StatusInvalidated,
		"invalidated_by_id":   actor.ID,
		"invalidation_reason": reason,
		"invalidated_at":      time.Now(),
	}

	if err := s.apply(articleID, models.StatusPublished, "invalidate", updates); err != nil {
		return nil, err
	}

	updated, err := s.articleRepo.GetByID(articleID)
	if err != nil {
		return nil, err
	}

	s.audit(article, actor, models.ActionInvalidated, reason, updated)
	s.notifyOutcome(ctx, updated, models.ActionInvalidated, reason)

	return updated, nil
}

// DirectPublish skips moderation for callers allowed to go live directly:
// manage-all, or create-content under a role configured to publish without
// moderation.
func (s *moderationService) DirectPublish(ctx context.Context, articleID uint, actor *models.User) (*models.Article, error) {
	caps := models.ResolveCapabilities(actor)
	allowed := caps.Has(models.CapManageAll) ||
		(caps.Has(models.CapCreateContent) && caps.Has(models.CapPublishWithoutModeration))
	if !allowed {
		return nil, &models.PermissionDeniedError{Capability: models.CapPublishWithoutModeration}
	}

	article, err := s.articleRepo.GetByID(articleID)
	if err != nil {
		return nil, err
	}
	if article.Status != models.StatusDraft && article.Status != models.StatusPending {
		return nil, &models.IllegalTransitionError{From: article.Status, Event: "direct-publish"}
	}

	now := time.Now()
	publishDate := now
	if article.DesiredPublishStart != nil && article.DesiredPublishStart.Before(now) {
		publishDate = *article.DesiredPublishStart
	}

	updates := map[string]interface{}{
		"status":             models.StatusPublished,
		"final_title":        article.DraftTitle,
		"final_content":      article.DraftContent,
		"moderated_at":       now,
		"moderator_approved": true,
		"publish_date":       publishDate,
	}

	if err := s.apply(articleID, article.Status, "direct-publish", updates); err != nil {
		return nil, err
	}

	updated, err := s.articleRepo.GetByID(articleID)
	if err != nil {
		return nil, err
	}

	s.audit(article, actor, models.ActionPublished, "", updated)

	if _, err := s.notifier.NotifyPublished(ctx, updated); err != nil {
		s.logger.Error("publish notification fan-out failed",
			zap.Uint("article_id", updated.ID), zap.Error(err))
	}

	return updated, nil
}

func (s *moderationService) ListPending(actor *models.User) ([]models.Article, error) {
	caps := models.ResolveCapabilities(actor)
	if !caps.Has(models.CapModerate) && !caps.Has(models.CapManageAll) {
		return nil, &models.PermissionDeniedError{Capability: models.CapModerate}
	}
	return s.articleRepo.ListPending()
}

// History returns the audit trail. Snapshots and rejection reasons are
// moderation-internal, so only moderators, admins and the article's own
// author may read them.
func (s *moderationService) History(articleID uint, actor *models.User) ([]models.ModerationLog, error) {
	caps := models.ResolveCapabilities(actor)
	if !caps.Has(models.CapModerate) && !caps.Has(models.CapManageAll) {
		article, err := s.articleRepo.GetByID(articleID)
		if err != nil {
			return nil, err
		}
		if article.AuthorID != actor.ID {
			return nil, &models.PermissionDeniedError{Capability: models.CapModerate}
		}
	}
	return s.logRepo.ListByArticle(articleID)
}

// apply runs the guarded single-row write. A lost race surfaces as a
// ConflictError so the second caller learns its precondition went stale.
func (s *moderationService) apply(articleID uint, expected models.ArticleStatus, event string, updates map[string]interface{}) error {
	won, err := s.articleRepo.TransitionStatus(articleID, expected, updates)
	if err != nil {
		return err
	}
	if !won {
		s.logger.Warn("concurrent transition lost",
			zap.Uint("article_id", articleID),
			zap.String("event", event),
			zap.String("expected_status", string(expected)))
		return &models.ConflictError{ArticleID: articleID, Expected: expected}
	}
	return nil
}

func (s *moderationService) audit(before *models.Article, actor *models.User, action models.ModerationAction, reason string, after *models.Article) {
	entry := &models.ModerationLog{
		ArticleID:       before.ID,
		ActorID:         actor.ID,
		Action:          action,
		Reason:          reason,
		PreviousContent: fmt.Sprintf("%s\n%s", before.Title(), before.Content()),
		NewContent:      fmt.Sprintf("%s\n%s", after.Title(), after.Content()),
	}
	if err := s.logRepo.Append(entry); err != nil {
		s.logger.Error("failed to append moderation log",
			zap.Uint("article_id", before.ID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

func (s *moderationService) notifyOutcome(ctx context.Context, article *models.Article, action models.ModerationAction, reason string) {
	if err := s.notifier.NotifyModerationOutcome(ctx, article, action, reason); err != nil {
		s.logger.Warn("author outcome notification failed",
			zap.Uint("article_id", article.ID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}
