package handlers

import (
	"campus-news-api/helper"
	"campus-news-api/models"
	"campus-news-api/services"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	moderationService services.ModerationService
	authService       services.AuthService
	Helper            *helper.HTTPHelper
}

func NewModerationHandler(moderationService services.ModerationService, authService services.AuthService) *ModerationHandler {
	return &ModerationHandler{
		moderationService: moderationService,
		authService:       authService,
		Helper:            &helper.HTTPHelper{},
	}
}

func (h *ModerationHandler) Submit(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	id, err := parseID(c, "id")
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}

	article, err := h.moderationService.Submit(c.Request.Context(), id, user)
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article submitted for moderation", article)
}

func (h *ModerationHandler) Approve(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	id, err := parseID(c, "id")
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.ApproveArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	article, err := h.moderationService.Approve(c.Request.Context(), id, user, req)
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article approved", article)
}

func (h *ModerationHandler) Reject(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	id, err := parseID(c, "id")
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.RejectArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendValidationError(c, "A rejection reason is required", h.Helper.EmptyJsonMap())
		return
	}

	article, err := h.moderationService.Reject(c.Request.Context(), id, user, req.Reason)
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article rejected", article)
}

func (h *ModerationHandler) Invalidate(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	id, err := parseID(c, "id")
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.InvalidateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendValidationError(c, "An invalidation reason is required", h.Helper.EmptyJsonMap())
		return
	}

	article, err := h.moderationService.Invalidate(c.Request.Context(), id, user, req.Reason)
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article invalidated", article)
}

func (h *ModerationHandler) DirectPublish(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	id, err := parseID(c, "id")
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}

	article, err := h.moderationService.DirectPublish(c.Request.Context(), id, user)
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article published", article)
}

func (h *ModerationHandler) ListPending(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	articles, err := h.moderationService.ListPending(user)
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Pending articles loaded", articles)
}

func (h *ModerationHandler) History(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	id, err := parseID(c, "id")
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}

	entries, err := h.moderationService.History(id, user)
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Moderation history loaded", entries)
}
