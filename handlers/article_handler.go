package handlers

import (
	"strconv"

	"campus-news-api/helper"
	"campus-news-api/models"
	"campus-news-api/services"

	"github.com/gin-gonic/gin"
)

type ArticleHandler struct {
	articleService services.ArticleService
	authService    services.AuthService
	Helper         *helper.HTTPHelper
}

func NewArticleHandler(articleService services.ArticleService, authService services.AuthService) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		authService:    authService,
		Helper:         &helper.HTTPHelper{},
	}
}

func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	var req models.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	article, err := h.articleService.CreateArticle(req, user)
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article created", article)
}

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	var params models.ArticleListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}
	if params.Page == 0 {
		params.Page = 1
	}
	if params.Limit == 0 {
		params.Limit = 10
	}

	articles, total, err := h.articleService.GetArticles(params, false)
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Articles loaded", gin.H{
		"articles":   articles,
		"pagination": h.Helper.GeneratePaging(c, 0, 0, params.Limit, params.Page, int(total)),
	})
}

func (h *ArticleHandler) GetPublicArticles(c *gin.Context) {
	var params models.ArticleListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}
	if params.Page == 0 {
		params.Page = 1
	}
	if params.Limit == 0 {
		params.Limit = 10
	}

	articles, total, err := h.articleService.GetArticles(params, true)
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Articles loaded", gin.H{
		"articles":   articles,
		"pagination": h.Helper.GeneratePaging(c, 0, 0, params.Limit, params.Page, int(total)),
	})
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
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

	article, err := h.articleService.GetArticle(id, user, false)
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article loaded", article)
}

func (h *ArticleHandler) GetPublicArticle(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid article ID", h.Helper.EmptyJsonMap())
		return
	}

	article, err := h.articleService.GetArticle(id, nil, true)
	if err != nil {
		h.Helper.SendNotFoundError(c, "Article not found", h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Article loaded", article)
}

func (h *ArticleHandler) MyArticles(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	articles, err := h.articleService.MyArticles(user.ID)
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Articles loaded", articles)
}

func parseID(c *gin.Context, name string) (uint, error) {
	raw, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(raw), nil
}
