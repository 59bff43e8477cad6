package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus-news-api/gateway"
	"campus-news-api/models"
	"campus-news-api/repositories"

	"go.uber.org/zap"
)

// DigestResult tallies one digest run.
type DigestResult struct {
	UsersMailed int `json:"users_mailed"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
}

type DigestService interface {
	// Run sends the digest for one cadence: FrequencyDaily covers the last
	// 24 hours, FrequencyWeekly the last 7 days.
	Run(ctx context.Context, freq models.NotificationFrequency) (*DigestResult, error)
}

type digestService struct {
	userRepo    repositories.UserRepository
	articleRepo repositories.ArticleRepository
	notifRepo   repositories.NotificationRepository
	mailer      gateway.Mailer
	logger      *zap.Logger
}

func NewDigestService(
	userRepo repositories.UserRepository,
	articleRepo repositories.ArticleRepository,
	notifRepo repositories.NotificationRepository,
	mailer gateway.Mailer,
	logger *zap.Logger,
) DigestService {
	return &digestService{
		userRepo:    userRepo,
		articleRepo: articleRepo,
		notifRepo:   notifRepo,
		mailer:      mailer,
		logger:      logger,
	}
}

func (s *digestService) Run(ctx context.Context, freq models.NotificationFrequency) (*DigestResult, error) {
	var window time.Duration
	var label string
	switch freq {
	case models.FrequencyDaily:
		window, label = 24*time.Hour, "daily"
	case models.FrequencyWeekly:
		window, label = 7*24*time.Hour, "weekly"
	default:
		return nil, &models.ValidationError{Field: "frequency", Message: "digest cadence must be daily or weekly"}
	}

	since := time.Now().Add(-window)
	recent, err := s.articleRepo.PublishedSince(since)
	if err != nil {
		return nil, err
	}

	result := &DigestResult{}
	if len(recent) == 0 {
		s.logger.Info("no articles in digest window", zap.String("cadence", label))
		return result, nil
	}

	users, err := s.userRepo.ListActiveByFrequency(freq)
	if err != nil {
		return nil, err
	}

	for i := range users {
		user := &users[i]
		if !user.EmailEnabled || user.Email == "" {
			result.Skipped++
			continue
		}

		articles, err := s.collectFor(user, recent)
		if err != nil {
			s.logger.Error("digest collection failed",
				zap.Uint("user_id", user.ID), zap.Error(err))
			result.Failed++
			continue
		}
		if len(articles) == 0 {
			// Never send an empty digest.
			result.Skipped++
			continue
		}

		switch s.sendDigest(ctx, user, articles, label) {
		case digestMailed:
			result.UsersMailed++
		case digestSkipped:
			result.Skipped++
		default:
			result.Failed++
		}
	}

	s.logger.Info("digest run complete",
		zap.String("cadence", label),
		zap.Int("users_mailed", result.UsersMailed),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))

	return result, nil
}

// collectFor filters the window down to articles this user should see and
// has not already been mailed about.
func (s *digestService) collectFor(user *models.User, recent []models.Article) ([]models.Article, error) {
	sent, err := s.notifRepo.SentArticleIDs(user.ID, models.ChannelEmail)
	if err != nil {
		return nil, err
	}

	var out []models.Article
	for i := range recent {
		article := &recent[i]
		if sent[article.ID] {
			continue
		}
		if !audienceMatch(user, article) {
			continue
		}
		out = append(out, *article)
	}
	return out, nil
}

type digestOutcome int

const (
	digestMailed digestOutcome = iota
	digestSkipped
	digestFailed
)

// sendDigest mails one combined message and, on success, writes a sent
// ledger row per included article so later runs exclude them.
func (s *digestService) sendDigest(ctx context.Context, user *models.User, articles []models.Article, label string) digestOutcome {
	// Claim all ledger keys first; an article that loses the claim (a
	// concurrent immediate send got there) is dropped from the batch.
	var claimed []models.Article
	for i := range articles {
		ledger := &models.Notification{
			UserID:    user.ID,
			ArticleID: articles[i].ID,
			Channel:   models.ChannelEmail,
			Title:     fmt.Sprintf("%s digest", label),
			Message:   fmt.Sprintf("included in %s digest", label),
		}
		ok, err := s.notifRepo.RecordAttempt(ledger)
		if err != nil {
			s.logger.Error("digest ledger write failed",
				zap.Uint("user_id", user.ID),
				zap.Uint("article_id", articles[i].ID),
				zap.Error(err))
			continue
		}
		if ok {
			claimed = append(claimed, articles[i])
		}
	}
	if len(claimed) == 0 {
		return digestSkipped
	}

	subject := fmt.Sprintf("Your %s news digest: %d new article(s)", label, len(claimed))
	body := s.render(user, claimed, label)

	if err := s.mailer.SendEmail(ctx, user.Email, subject, body, ""); err != nil {
		s.logger.Warn("digest delivery failed",
			zap.Uint("user_id", user.ID),
			zap.String("cadence", label),
			zap.Error(err))
		for i := range claimed {
			s.markOutcome(user.ID, claimed[i].ID, models.NotificationFailed, nil)
		}
		return digestFailed
	}

	now := time.Now()
	for i := range claimed {
		s.markOutcome(user.ID, claimed[i].ID, models.NotificationSent, &now)
	}
	return digestMailed
}

func (s *digestService) markOutcome(userID, articleID uint, status models.NotificationStatus, sentAt *time.Time) {
	ledger := &models.Notification{
		UserID:    userID,
		ArticleID: articleID,
		Channel:   models.ChannelEmail,
		SentAt:    sentAt,
	}
	if err := s.notifRepo.MarkOutcome(ledger, status); err != nil {
		s.logger.Error("failed to ledger digest outcome",
			zap.Uint("user_id", userID),
			zap.Uint("article_id", articleID),
			zap.Error(err))
	}
}

func (s *digestService) render(user *models.User, articles []models.Article, label string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nHere is your %s summary of campus news:\n\n", user.Username, label)
	for i := range articles {
		a := &articles[i]
		fmt.Fprintf(&b, "- [%s] %s (%s)\n", a.Category.Name, a.Title(), a.Importance)
	}
	b.WriteString("\nLog in to read the full articles.\n")
	return b.String()
}
