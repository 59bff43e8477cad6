package handlers

import (
	"campus-news-api/helper"
	"campus-news-api/models"
	"campus-news-api/repositories"
	"campus-news-api/services"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryRepo repositories.CategoryRepository
	authService  services.AuthService
	Helper       *helper.HTTPHelper
}

func NewCategoryHandler(categoryRepo repositories.CategoryRepository, authService services.AuthService) *CategoryHandler {
	return &CategoryHandler{
		categoryRepo: categoryRepo,
		authService:  authService,
		Helper:       &helper.HTTPHelper{},
	}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}
	if !models.ResolveCapabilities(user).Has(models.CapManageAll) {
		h.Helper.SendForbiddenError(c, "Requires admin", h.Helper.EmptyJsonMap())
		return
	}

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	if _, err := h.categoryRepo.GetByName(req.Name); err == nil {
		h.Helper.SendConflictError(c, "Category already exists", h.Helper.EmptyJsonMap())
		return
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if err := h.categoryRepo.Create(category); err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Category created", category)
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryRepo.GetAll()
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Categories loaded", categories)
}
