package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campus-news-api/models"

	"gorm.io/gorm"
)

// In-memory repository and gateway fakes used across the service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]*models.User
	next  uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}, next: 1}
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.next
	r.next++
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) ListActive() ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for id := uint(1); id < r.next; id++ {
		if user, ok := r.users[id]; ok && user.IsActive {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListActiveByFrequency(freq models.NotificationFrequency) ([]models.User, error) {
	all, _ := r.ListActive()
	var out []models.User
	for _, user := range all {
		if user.Frequency == freq {
			out = append(out, user)
		}
	}
	return out, nil
}

type fakeArticleRepo struct {
	mu       sync.Mutex
	articles map[uint]*models.Article
	next     uint

	// beforeTransition, when set, runs inside TransitionStatus before the
	// status check. Tests use it to lose a race deterministically.
	beforeTransition func(article *models.Article)
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{articles: map[uint]*models.Article{}, next: 1}
}

func (r *fakeArticleRepo) Create(article *models.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	article.ID = r.next
	r.next++
	article.CreatedAt = time.Now()
	clone := *article
	r.articles[article.ID] = &clone
	return nil
}

func (r *fakeArticleRepo) GetByID(id uint) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	article, ok := r.articles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *article
	return &clone, nil
}

func (r *fakeArticleRepo) GetList(params models.ArticleListParams, isPublic bool) ([]models.Article, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Article
	for id := uint(1); id < r.next; id++ {
		article, ok := r.articles[id]
		if !ok {
			continue
		}
		if isPublic && article.Status != models.StatusPublished {
			continue
		}
		if params.Status != "" && string(article.Status) != params.Status {
			continue
		}
		out = append(out, *article)
	}
	return out, int64(len(out)), nil
}

func (r *fakeArticleRepo) ListPending() ([]models.Article, error) {
	all, _, _ := r.GetList(models.ArticleListParams{Status: string(models.StatusPending)}, false)
	return all, nil
}

func (r *fakeArticleRepo) ListByAuthor(authorID uint) ([]models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Article
	for id := uint(1); id < r.next; id++ {
		if article, ok := r.articles[id]; ok && article.AuthorID == authorID {
			out = append(out, *article)
		}
	}
	return out, nil
}

func (r *fakeArticleRepo) PublishedSince(since time.Time) ([]models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Article
	for id := uint(1); id < r.next; id++ {
		article, ok := r.articles[id]
		if !ok || article.Status != models.StatusPublished || article.PublishDate == nil {
			continue
		}
		if article.PublishDate.Before(since) {
			continue
		}
		out = append(out, *article)
	}
	return out, nil
}

func (r *fakeArticleRepo) Update(article *models.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *article
	r.articles[article.ID] = &clone
	return nil
}

func (r *fakeArticleRepo) TransitionStatus(id uint, expected models.ArticleStatus, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	article, ok := r.articles[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if r.beforeTransition != nil {
		r.beforeTransition(article)
	}
	if article.Status != expected {
		return false, nil
	}
	applyArticleUpdates(article, updates)
	return true, nil
}

func applyArticleUpdates(article *models.Article, updates map[string]interface{}) {
	for column, value := range updates {
		switch column {
		case "status":
			article.Status = value.(models.ArticleStatus)
		case "written_at":
			t := value.(time.Time)
			article.WrittenAt = &t
		case "final_title":
			article.FinalTitle = value.(string)
		case "final_content":
			article.FinalContent = value.(string)
		case "moderator_id":
			if value == nil {
				article.ModeratorID = nil
			} else {
				id := value.(uint)
				article.ModeratorID = &id
			}
		case "moderated_at":
			if value == nil {
				article.ModeratedAt = nil
			} else {
				t := value.(time.Time)
				article.ModeratedAt = &t
			}
		case "moderator_approved":
			article.ModeratorApproved = value.(bool)
		case "moderation_comment":
			article.ModerationComment = value.(string)
		case "publish_date":
			t := value.(time.Time)
			article.PublishDate = &t
		case "invalidated_by_id":
			id := value.(uint)
			article.InvalidatedByID = &id
		case "invalidation_reason":
			article.InvalidationReason = value.(string)
		case "invalidated_at":
			t := value.(time.Time)
			article.InvalidatedAt = &t
		}
	}
}

type ledgerKey struct {
	userID    uint
	articleID uint
	channel   models.NotificationChannel
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	entries map[ledgerKey]*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{entries: map[ledgerKey]*models.Notification{}}
}

func (r *fakeNotificationRepo) RecordAttempt(n *models.Notification) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := ledgerKey{n.UserID, n.ArticleID, n.Channel}
	if existing, ok := r.entries[key]; ok {
		if existing.Status == models.NotificationSent {
			return false, nil
		}
		existing.Status = models.NotificationPending
		existing.Title = n.Title
		existing.Message = n.Message
		return true, nil
	}
	n.Status = models.NotificationPending
	clone := *n
	r.entries[key] = &clone
	return true, nil
}

func (r *fakeNotificationRepo) MarkOutcome(n *models.Notification, status models.NotificationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := ledgerKey{n.UserID, n.ArticleID, n.Channel}
	existing, ok := r.entries[key]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	existing.Status = status
	existing.SentAt = n.SentAt
	return nil
}

func (r *fakeNotificationRepo) HasSent(userID, articleID uint, channel models.NotificationChannel) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[ledgerKey{userID, articleID, channel}]
	return ok && entry.Status == models.NotificationSent, nil
}

func (r *fakeNotificationRepo) SentArticleIDs(userID uint, channel models.NotificationChannel) (map[uint]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[uint]bool{}
	for key, entry := range r.entries {
		if key.userID == userID && key.channel == channel && entry.Status == models.NotificationSent {
			out[key.articleID] = true
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) ListByUser(userID uint) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for key, entry := range r.entries {
		if key.userID == userID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) sentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, entry := range r.entries {
		if entry.Status == models.NotificationSent {
			count++
		}
	}
	return count
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []models.ModerationLog
}

func (r *fakeLogRepo) Append(entry *models.ModerationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uint(len(r.entries) + 1)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLogRepo) ListByArticle(articleID uint) ([]models.ModerationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ModerationLog
	for _, entry := range r.entries {
		if entry.ArticleID == articleID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[uint]*models.Category
	next       uint
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[uint]*models.Category{}, next: 1}
}

func (r *fakeCategoryRepo) Create(category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	category.ID = r.next
	r.next++
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *fakeCategoryRepo) GetByID(id uint) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *category
	return &clone, nil
}

func (r *fakeCategoryRepo) GetByName(name string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, category := range r.categories {
		if category.Name == name {
			clone := *category
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCategoryRepo) GetAll() ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Category
	for id := uint(1); id < r.next; id++ {
		if category, ok := r.categories[id]; ok {
			out = append(out, *category)
		}
	}
	return out, nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []sentMail
	failFor  map[string]bool
	failNext bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failFor: map[string]bool{}}
}

func (m *fakeMailer) SendEmail(ctx context.Context, to, subject, bodyText, bodyHTML string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext || m.failFor[to] {
		m.failNext = false
		return fmt.Errorf("smtp unavailable for %s", to)
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: bodyText})
	return nil
}

func (m *fakeMailer) mailsTo(addr string) []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMail
	for _, mail := range m.sent {
		if mail.To == addr {
			out = append(out, mail)
		}
	}
	return out
}

type sentPush struct {
	Token string
	Title string
	Body  string
}

type fakePusher struct {
	mu      sync.Mutex
	sent    []sentPush
	failFor map[string]bool
}

func newFakePusher() *fakePusher {
	return &fakePusher{failFor: map[string]bool{}}
}

func (p *fakePusher) SendPush(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failFor[deviceToken] {
		return fmt.Errorf("fcm rejected token %s", deviceToken)
	}
	p.sent = append(p.sent, sentPush{Token: deviceToken, Title: title, Body: body})
	return nil
}
