package handlers

import (
	"campus-news-api/helper"
	"campus-news-api/models"
	"campus-news-api/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the digest trigger so operators (or an external cron
// hitting the API) can force a run outside the scheduler.
type AdminHandler struct {
	digestService       services.DigestService
	notificationService services.NotificationService
	roleService         services.RoleService
	authService         services.AuthService
	Helper              *helper.HTTPHelper
}

func NewAdminHandler(digestService services.DigestService, notificationService services.NotificationService, roleService services.RoleService, authService services.AuthService) *AdminHandler {
	return &AdminHandler{
		digestService:       digestService,
		notificationService: notificationService,
		roleService:         roleService,
		authService:         authService,
		Helper:              &helper.HTTPHelper{},
	}
}

func (h *AdminHandler) RunDigest(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}
	if !models.ResolveCapabilities(user).Has(models.CapManageAll) {
		h.Helper.SendForbiddenError(c, "Requires admin", h.Helper.EmptyJsonMap())
		return
	}

	var freq models.NotificationFrequency
	switch c.Param("cadence") {
	case "daily":
		freq = models.FrequencyDaily
	case "weekly":
		freq = models.FrequencyWeekly
	default:
		h.Helper.SendBadRequest(c, "Cadence must be daily or weekly", h.Helper.EmptyJsonMap())
		return
	}

	result, err := h.digestService.Run(c.Request.Context(), freq)
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Digest run complete", result)
}

func (h *AdminHandler) ListRoles(c *gin.Context) {
	if _, ok := currentUser(c, h.authService); !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	roles, err := h.roleService.GetRoles()
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Roles loaded", roles)
}

func (h *AdminHandler) MyNotifications(c *gin.Context) {
	user, ok := currentUser(c, h.authService)
	if !ok {
		h.Helper.SendUnauthorizedError(c, "User not found in context", h.Helper.EmptyJsonMap())
		return
	}

	notifications, err := h.notificationService.ListForUser(user.ID)
	if err != nil {
		respondServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Notifications loaded", notifications)
}
