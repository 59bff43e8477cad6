package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"campus-news-api/gateway"
	"campus-news-api/models"
	"campus-news-api/repositories"

	"go.uber.org/zap"
)

type NotificationService interface {
	Notifier
	PlanNotifications(article *models.Article) ([]models.PlanEntry, error)
	ListForUser(userID uint) ([]models.Notification, error)
}

type notificationService struct {
	userRepo  repositories.UserRepository
	notifRepo repositories.NotificationRepository
	mailer    gateway.Mailer
	pusher    gateway.Pusher
	workers   int
	logger    *zap.Logger
}

func NewNotificationService(
	userRepo repositories.UserRepository,
	notifRepo repositories.NotificationRepository,
	mailer gateway.Mailer,
	pusher gateway.Pusher,
	workers int,
	logger *zap.Logger,
) NotificationService {
	if workers <= 0 {
		workers = 1
	}
	return &notificationService{
		userRepo:  userRepo,
		notifRepo: notifRepo,
		mailer:    mailer,
		pusher:    pusher,
		workers:   workers,
		logger:    logger,
	}
}

// audienceMatch reports whether the user should see the article at all. An
// article with no target program reaches everyone; a user with no program
// restriction sees everything.
func audienceMatch(user *models.User, article *models.Article) bool {
	if article.TargetProgram == "" || user.Program == "" {
		return true
	}
	return user.Program == article.TargetProgram
}

// PlanNotifications decides, per user and channel, whether a published
// article goes out now, waits for a digest, or is suppressed.
//
// Urgent and high importance override the user's batching preference: those
// articles never wait for a digest window. A frequency of "disabled" is a
// global opt-out and suppresses even urgent articles. Push is planned
// independently of the email frequency preference.
func (s *notificationService) PlanNotifications(article *models.Article) ([]models.PlanEntry, error) {
	users, err := s.userRepo.ListActive()
	if err != nil {
		return nil, err
	}

	urgent := article.Importance == models.ImportanceUrgent || article.Importance == models.ImportanceHigh

	var plan []models.PlanEntry
	for i := range users {
		user := &users[i]
		if !audienceMatch(user, article) {
			continue
		}

		if user.EmailEnabled && user.Email != "" {
			mode := s.emailMode(user, urgent)
			if entry, ok := s.dedup(user, article, models.ChannelEmail, mode); ok {
				plan = append(plan, entry)
			}
		}

		if user.PushEnabled && user.PushToken != "" {
			mode := s.pushMode(user, urgent)
			if entry, ok := s.dedup(user, article, models.ChannelPush, mode); ok {
				plan = append(plan, entry)
			}
		}
	}

	return plan, nil
}

func (s *notificationService) emailMode(user *models.User, urgent bool) models.DeliveryMode {
	if user.Frequency == models.FrequencyDisabled {
		return models.ModeSuppressed
	}
	if urgent {
		return models.ModeImmediate
	}
	switch user.Frequency {
	case models.FrequencyImmediate:
		return models.ModeImmediate
	case models.FrequencyDaily:
		return models.ModeDigestDaily
	case models.FrequencyWeekly:
		return models.ModeDigestWeek
	default:
		return models.ModeSuppressed
	}
}

// pushMode ignores the daily/weekly batching preference: digests are an
// email construct, so an enabled push channel gets the article immediately.
// Disabled still opts the user out entirely.
func (s *notificationService) pushMode(user *models.User, urgent bool) models.DeliveryMode {
	if user.Frequency == models.FrequencyDisabled {
		return models.ModeSuppressed
	}
	return models.ModeImmediate
}

// dedup drops an entry when the ledger already holds a sent row for the key.
func (s *notificationService) dedup(user *models.User, article *models.Article, channel models.NotificationChannel, mode models.DeliveryMode) (models.PlanEntry, bool) {
	sent, err := s.notifRepo.HasSent(user.ID, article.ID, channel)
	if err != nil {
		s.logger.Warn("ledger lookup failed, skipping recipient",
			zap.Uint("user_id", user.ID),
			zap.Uint("article_id", article.ID),
			zap.Error(err))
		return models.PlanEntry{}, false
	}
	if sent {
		return models.PlanEntry{}, false
	}
	return models.PlanEntry{User: user, Channel: channel, Mode: mode}, true
}

// NotifyPublished plans and delivers the immediate slice of the plan with a
// bounded worker pool. Digest entries are left for the scheduler. A failure
// for one recipient is ledgered and tallied, never propagated.
func (s *notificationService) NotifyPublished(ctx context.Context, article *models.Article) (*models.NotifyResult, error) {
	plan, err := s.PlanNotifications(article)
	if err != nil {
		return nil, err
	}

	result := &models.NotifyResult{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)

	for _, entry := range plan {
		switch entry.Mode {
		case models.ModeSuppressed:
			result.Suppressed++
			continue
		case models.ModeDigestDaily, models.ModeDigestWeek:
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(entry models.PlanEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			sent := s.deliver(ctx, entry.User, article, entry.Channel)
			mu.Lock()
			defer mu.Unlock()
			if !sent {
				result.Failed++
			} else if entry.Channel == models.ChannelEmail {
				result.EmailsSent++
			} else {
				result.PushSent++
			}
		}(entry)
	}

	wg.Wait()

	s.logger.Info("publish fan-out complete",
		zap.Uint("article_id", article.ID),
		zap.String("importance", string(article.Importance)),
		zap.Int("emails_sent", result.EmailsSent),
		zap.Int("push_sent", result.PushSent),
		zap.Int("failed", result.Failed),
		zap.Int("suppressed", result.Suppressed))

	return result, nil
}

// deliver claims the ledger key, attempts the transport call and flips the
// row to sent or failed. Returns true only on a successful send.
func (s *notificationService) deliver(ctx context.Context, user *models.User, article *models.Article, channel models.NotificationChannel) bool {
	subject, body := s.renderArticle(user, article)

	ledger := &models.Notification{
		UserID:    user.ID,
		ArticleID: article.ID,
		Channel:   channel,
		Title:     subject,
		Message:   body,
	}

	claimed, err := s.notifRepo.RecordAttempt(ledger)
	if err != nil {
		s.logger.Error("ledger write failed",
			zap.Uint("user_id", user.ID),
			zap.Uint("article_id", article.ID),
			zap.Error(err))
		return false
	}
	if !claimed {
		// Someone else already sent this key; nothing to do.
		return true
	}

	var sendErr error
	switch channel {
	case models.ChannelEmail:
		sendErr = s.mailer.SendEmail(ctx, user.Email, subject, body, "")
	case models.ChannelPush:
		sendErr = s.pusher.SendPush(ctx, user.PushToken, article.Category.Name, article.Title(), map[string]string{
			"article_id": strconv.FormatUint(uint64(article.ID), 10),
			"importance": string(article.Importance),
			"type":       "new_article",
		})
	}

	if sendErr != nil {
		dErr := &models.DeliveryError{Channel: channel, UserID: user.ID, Cause: sendErr}
		s.logger.Warn("delivery failed", zap.Error(dErr))
		if err := s.notifRepo.MarkOutcome(ledger, models.NotificationFailed); err != nil {
			s.logger.Error("failed to ledger delivery failure", zap.Error(err))
		}
		return false
	}

	now := time.Now()
	ledger.SentAt = &now
	if err := s.notifRepo.MarkOutcome(ledger, models.NotificationSent); err != nil {
		s.logger.Error("failed to ledger delivery success", zap.Error(err))
	}
	return true
}

// NotifyModerationOutcome mails the author about an approve, reject or
// invalidate decision. Author mail is transactional and intentionally not
// ledgered: the dedup key must stay free for the published broadcast.
func (s *notificationService) NotifyModerationOutcome(ctx context.Context, article *models.Article, action models.ModerationAction, reason string) error {
	author := article.Author
	if author.Email == "" {
		return nil
	}

	var subject, verdict string
	switch action {
	case models.ActionSubmitted:
		subject = fmt.Sprintf("Your article %q has been received", article.Title())
		verdict = "received and is waiting for moderation"
	case models.ActionApproved:
		subject = fmt.Sprintf("Your article %q has been approved", article.Title())
		verdict = "approved and is now published"
	case models.ActionRejected:
		subject = fmt.Sprintf("Your article %q has been rejected", article.Title())
		verdict = "rejected; you can edit and resubmit it"
	case models.ActionInvalidated:
		subject = fmt.Sprintf("Your article %q has been taken down", article.Title())
		verdict = "invalidated by an administrator"
	default:
		return nil
	}

	body := fmt.Sprintf("Hello %s,\n\nYour article %q has been %s.\n", author.Username, article.Title(), verdict)
	if reason != "" {
		body += fmt.Sprintf("\nReason: %s\n", reason)
	}

	if err := s.mailer.SendEmail(ctx, author.Email, subject, body, ""); err != nil {
		return &models.DeliveryError{Channel: models.ChannelEmail, UserID: author.ID, Cause: err}
	}
	return nil
}

func (s *notificationService) ListForUser(userID uint) ([]models.Notification, error) {
	return s.notifRepo.ListByUser(userID)
}

func (s *notificationService) renderArticle(user *models.User, article *models.Article) (string, string) {
	subject := fmt.Sprintf("New article: %s", article.Title())

	// Truncate on a rune boundary so multibyte content stays valid UTF-8.
	preview := article.Content()
	if runes := []rune(preview); len(runes) > 200 {
		preview = string(runes[:200]) + "..."
	}

	body := fmt.Sprintf(
		"Hello %s,\n\nA new article has been published:\n\nTitle: %s\nCategory: %s\nImportance: %s\n\n%s\n",
		user.Username, article.Title(), article.Category.Name, article.Importance, preview,
	)
	return subject, body
}
