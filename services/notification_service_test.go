package services

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"campus-news-api/models"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type NotificationServiceTestSuite struct {
	suite.Suite
	users   *fakeUserRepo
	notifs  *fakeNotificationRepo
	mailer  *fakeMailer
	pusher  *fakePusher
	service NotificationService

	immediate *models.User
	daily     *models.User
	weekly    *models.User
	disabled  *models.User
}

func (s *NotificationServiceTestSuite) SetupTest() {
	s.users = newFakeUserRepo()
	s.notifs = newFakeNotificationRepo()
	s.mailer = newFakeMailer()
	s.pusher = newFakePusher()
	s.service = NewNotificationService(s.users, s.notifs, s.mailer, s.pusher, 4, zap.NewNop())

	s.immediate = s.addUser("ana", "ana@campus.edu", models.FrequencyImmediate, "")
	s.daily = s.addUser("ben", "ben@campus.edu", models.FrequencyDaily, "")
	s.weekly = s.addUser("cleo", "cleo@campus.edu", models.FrequencyWeekly, "")
	s.disabled = s.addUser("dan", "dan@campus.edu", models.FrequencyDisabled, "")
}

func (s *NotificationServiceTestSuite) addUser(name, email string, freq models.NotificationFrequency, pushToken string) *models.User {
	user := &models.User{
		Username:     name,
		Email:        email,
		Role:         models.RoleStudent,
		Frequency:    freq,
		EmailEnabled: true,
		PushEnabled:  pushToken != "",
		PushToken:    pushToken,
		IsActive:     true,
	}
	s.Require().NoError(s.users.Create(user))
	return user
}

func (s *NotificationServiceTestSuite) article(importance models.Importance, targetProgram string) *models.Article {
	return &models.Article{
		ID:            42,
		AuthorID:      99,
		DraftTitle:    "Campus network maintenance",
		DraftContent:  "Expect outages on Saturday morning.",
		Category:      models.Category{ID: 1, Name: "IT"},
		Importance:    importance,
		TargetProgram: targetProgram,
		Status:        models.StatusPublished,
	}
}

func (s *NotificationServiceTestSuite) modeFor(plan []models.PlanEntry, userID uint, channel models.NotificationChannel) (models.DeliveryMode, bool) {
	for _, entry := range plan {
		if entry.User.ID == userID && entry.Channel == channel {
			return entry.Mode, true
		}
	}
	return "", false
}

func (s *NotificationServiceTestSuite) TestPlanMediumImportanceHonorsFrequency() {
	plan, err := s.service.PlanNotifications(s.article(models.ImportanceMedium, ""))
	s.Require().NoError(err)

	mode, ok := s.modeFor(plan, s.immediate.ID, models.ChannelEmail)
	s.Require().True(ok)
	s.Equal(models.ModeImmediate, mode)

	mode, ok = s.modeFor(plan, s.daily.ID, models.ChannelEmail)
	s.Require().True(ok)
	s.Equal(models.ModeDigestDaily, mode)

	mode, ok = s.modeFor(plan, s.weekly.ID, models.ChannelEmail)
	s.Require().True(ok)
	s.Equal(models.ModeDigestWeek, mode)

	mode, ok = s.modeFor(plan, s.disabled.ID, models.ChannelEmail)
	s.Require().True(ok)
	s.Equal(models.ModeSuppressed, mode)
}

func (s *NotificationServiceTestSuite) TestPlanUrgentOverridesBatching() {
	plan, err := s.service.PlanNotifications(s.article(models.ImportanceUrgent, ""))
	s.Require().NoError(err)

	for _, user := range []*models.User{s.immediate, s.daily, s.weekly} {
		mode, ok := s.modeFor(plan, user.ID, models.ChannelEmail)
		s.Require().True(ok, "expected a plan entry for %s", user.Username)
		s.Equal(models.ModeImmediate, mode)
	}

	// Disabled is a global opt-out, urgency does not pierce it.
	mode, ok := s.modeFor(plan, s.disabled.ID, models.ChannelEmail)
	s.Require().True(ok)
	s.Equal(models.ModeSuppressed, mode)
}

func (s *NotificationServiceTestSuite) TestPlanPushIgnoresEmailBatching() {
	withPush := s.addUser("eva", "eva@campus.edu", models.FrequencyWeekly, "token-eva")

	plan, err := s.service.PlanNotifications(s.article(models.ImportanceLow, ""))
	s.Require().NoError(err)

	emailMode, ok := s.modeFor(plan, withPush.ID, models.ChannelEmail)
	s.Require().True(ok)
	s.Equal(models.ModeDigestWeek, emailMode)

	pushMode, ok := s.modeFor(plan, withPush.ID, models.ChannelPush)
	s.Require().True(ok)
	s.Equal(models.ModeImmediate, pushMode)
}

func (s *NotificationServiceTestSuite) TestPlanFiltersByTargetProgram() {
	csStudent := s.addUser("fred", "fred@campus.edu", models.FrequencyImmediate, "")
	csStudent.Program = "computer-science"
	s.Require().NoError(s.users.Update(csStudent))

	bioStudent := s.addUser("gina", "gina@campus.edu", models.FrequencyImmediate, "")
	bioStudent.Program = "biology"
	s.Require().NoError(s.users.Update(bioStudent))

	plan, err := s.service.PlanNotifications(s.article(models.ImportanceMedium, "computer-science"))
	s.Require().NoError(err)

	_, ok := s.modeFor(plan, csStudent.ID, models.ChannelEmail)
	s.True(ok)

	_, ok = s.modeFor(plan, bioStudent.ID, models.ChannelEmail)
	s.False(ok)

	// Users without a program restriction see targeted articles too.
	_, ok = s.modeFor(plan, s.immediate.ID, models.ChannelEmail)
	s.True(ok)
}

func (s *NotificationServiceTestSuite) TestNotifyPublishedUrgentScenario() {
	result, err := s.service.NotifyPublished(context.Background(), s.article(models.ImportanceUrgent, ""))
	s.Require().NoError(err)

	s.Equal(3, result.EmailsSent)
	s.Equal(0, result.PushSent)
	s.Equal(0, result.Failed)
	s.Equal(1, result.Suppressed)

	s.NotEmpty(s.mailer.mailsTo(s.weekly.Email))
	s.Empty(s.mailer.mailsTo(s.disabled.Email))

	// The opted-out user gets no ledger row either.
	rows, err := s.service.ListForUser(s.disabled.ID)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *NotificationServiceTestSuite) TestNotifyPublishedMediumLeavesDigestUsersAlone() {
	result, err := s.service.NotifyPublished(context.Background(), s.article(models.ImportanceMedium, ""))
	s.Require().NoError(err)

	s.Equal(1, result.EmailsSent)
	s.Empty(s.mailer.mailsTo(s.daily.Email))
	s.Empty(s.mailer.mailsTo(s.weekly.Email))

	// Digest users keep a clean ledger so the scheduler can still claim the key.
	rows, err := s.service.ListForUser(s.daily.ID)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *NotificationServiceTestSuite) TestNotifyPublishedIsIdempotent() {
	article := s.article(models.ImportanceUrgent, "")

	first, err := s.service.NotifyPublished(context.Background(), article)
	s.Require().NoError(err)
	s.Equal(3, first.EmailsSent)

	second, err := s.service.NotifyPublished(context.Background(), article)
	s.Require().NoError(err)
	s.Equal(0, second.EmailsSent)
	s.Equal(0, second.Failed)

	s.Len(s.mailer.mailsTo(s.immediate.Email), 1)
	s.Equal(3, s.notifs.sentCount())
}

func (s *NotificationServiceTestSuite) TestNotifyPublishedIsolatesRecipientFailure() {
	s.mailer.failFor[s.immediate.Email] = true

	result, err := s.service.NotifyPublished(context.Background(), s.article(models.ImportanceUrgent, ""))
	s.Require().NoError(err)
	s.Equal(2, result.EmailsSent)
	s.Equal(1, result.Failed)

	s.NotEmpty(s.mailer.mailsTo(s.weekly.Email))

	// The failed row stays claimable for a retry.
	s.mailer.failFor = map[string]bool{}
	retry, err := s.service.NotifyPublished(context.Background(), s.article(models.ImportanceUrgent, ""))
	s.Require().NoError(err)
	s.Equal(1, retry.EmailsSent)
	s.Len(s.mailer.mailsTo(s.immediate.Email), 1)
}

func (s *NotificationServiceTestSuite) TestNotifyPublishedSendsPush() {
	withPush := s.addUser("hana", "hana@campus.edu", models.FrequencyDaily, "token-hana")

	result, err := s.service.NotifyPublished(context.Background(), s.article(models.ImportanceMedium, ""))
	s.Require().NoError(err)
	s.Equal(1, result.PushSent)

	s.pusher.mu.Lock()
	defer s.pusher.mu.Unlock()
	s.Require().Len(s.pusher.sent, 1)
	s.Equal("token-hana", s.pusher.sent[0].Token)
	s.Equal("Campus network maintenance", s.pusher.sent[0].Body)

	// The daily email for the same user is still deferred.
	s.Empty(s.mailer.mailsTo(withPush.Email))
}

func (s *NotificationServiceTestSuite) TestNotifyModerationOutcomeSubmissionConfirmation() {
	article := s.article(models.ImportanceMedium, "")
	article.Author = *s.immediate
	article.AuthorID = s.immediate.ID

	err := s.service.NotifyModerationOutcome(context.Background(), article, models.ActionSubmitted, "")
	s.Require().NoError(err)

	mails := s.mailer.mailsTo(s.immediate.Email)
	s.Require().Len(mails, 1)
	s.Contains(mails[0].Subject, "received")
	s.Contains(mails[0].Body, "waiting for moderation")

	rows, err := s.service.ListForUser(s.immediate.ID)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *NotificationServiceTestSuite) TestPreviewTruncatesOnRuneBoundary() {
	article := s.article(models.ImportanceUrgent, "")
	article.DraftContent = strings.Repeat("é", 300)

	_, err := s.service.NotifyPublished(context.Background(), article)
	s.Require().NoError(err)

	mails := s.mailer.mailsTo(s.immediate.Email)
	s.Require().Len(mails, 1)
	s.True(utf8.ValidString(mails[0].Body))
	s.Contains(mails[0].Body, strings.Repeat("é", 200)+"...")
	s.NotContains(mails[0].Body, strings.Repeat("é", 201))
}

func (s *NotificationServiceTestSuite) TestNotifyModerationOutcomeNotLedgered() {
	article := s.article(models.ImportanceMedium, "")
	article.Author = *s.immediate
	article.AuthorID = s.immediate.ID

	err := s.service.NotifyModerationOutcome(context.Background(), article, models.ActionRejected, "too vague")
	s.Require().NoError(err)

	mails := s.mailer.mailsTo(s.immediate.Email)
	s.Require().Len(mails, 1)
	s.Contains(mails[0].Body, "too vague")

	rows, err := s.service.ListForUser(s.immediate.ID)
	s.Require().NoError(err)
	s.Empty(rows)
}

func TestNotificationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationServiceTestSuite))
}
