package models

import "time"

type RegisterRequest struct {
	Username  string                `json:"username" binding:"required,min=3,max=50"`
	Email     string                `json:"email" binding:"required,email"`
	Password  string                `json:"password" binding:"required,min=6"`
	Role      UserRole              `json:"role,omitempty"`
	Program   string                `json:"program,omitempty"`
	Frequency NotificationFrequency `json:"notification_frequency,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreateArticleRequest struct {
	Title               string     `json:"title" binding:"required,min=1,max=200"`
	Content             string     `json:"content" binding:"required"`
	CategoryID          uint       `json:"category_id" binding:"required"`
	Importance          Importance `json:"importance,omitempty"`
	TargetProgram       string     `json:"target_program,omitempty"`
	DesiredPublishStart *time.Time `json:"desired_publish_start,omitempty"`
	ExpiryDate          *time.Time `json:"expiry_date,omitempty"`
}

type ApproveArticleRequest struct {
	FinalTitle   string `json:"final_title,omitempty"`
	FinalContent string `json:"final_content,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

type RejectArticleRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type InvalidateArticleRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description,omitempty"`
}

type ArticleListParams struct {
	Status     string `form:"status"`
	Importance string `form:"importance"`
	Program    string `form:"program"`
	CategoryID uint   `form:"category_id"`
	AuthorID   uint   `form:"author_id"`
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=10"`
	SortBy     string `form:"sort_by,default=created_at"`
	SortOrder  string `form:"sort_order,default=desc"`
}

// NotifyResult is the tally returned by a fan-out: per-recipient failures
// are counted, never raised.
type NotifyResult struct {
	EmailsSent int `json:"emails_sent"`
	PushSent   int `json:"push_sent"`
	Failed     int `json:"failed"`
	Suppressed int `json:"suppressed"`
}
