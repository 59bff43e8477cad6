package handlers

import (
	"errors"

	"campus-news-api/helper"
	"campus-news-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondServiceError maps the service error taxonomy onto the response
// envelope.
func respondServiceError(h *helper.HTTPHelper, c *gin.Context, err error) {
	var (
		illegal    *models.IllegalTransitionError
		denied     *models.PermissionDeniedError
		validation *models.ValidationError
		conflict   *models.ConflictError
	)

	switch {
	case errors.As(err, &denied):
		h.SendForbiddenError(c, err.Error(), h.EmptyJsonMap())
	case errors.As(err, &validation):
		h.SendValidationError(c, err.Error(), h.EmptyJsonMap())
	case errors.As(err, &conflict):
		h.SendConflictError(c, err.Error(), h.EmptyJsonMap())
	case errors.As(err, &illegal):
		h.SendConflictError(c, err.Error(), h.EmptyJsonMap())
	case errors.Is(err, gorm.ErrRecordNotFound):
		h.SendNotFoundError(c, "Article not found", h.EmptyJsonMap())
	default:
		h.SendBadRequest(c, err.Error(), h.EmptyJsonMap())
	}
}
