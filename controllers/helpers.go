package controllers

import (
	"errors"
	"net/http"

	"jobsbreeze-backend/models"
	"jobsbreeze-backend/services"
	"jobsbreeze-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ownerID returns the authenticated user, aborting with 401 when missing.
func ownerID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := utils.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	return id, true
}

// paramID parses a uuid path parameter, aborting with 400 when malformed.
func paramID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service and store errors onto HTTP responses.
func respondServiceError(c *gin.Context, log *zap.Logger, err error, notFound string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.RespondWithFieldErrors(c, http.StatusBadRequest, verr.Fields)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondWithError(c, http.StatusNotFound, notFound)
	case errors.Is(err, services.ErrClientNotFound):
		utils.RespondWithError(c, http.StatusBadRequest, "Client not found")
	case errors.Is(err, services.ErrItemNotFound):
		utils.RespondWithError(c, http.StatusBadRequest, "Catalog item not found")
	case errors.Is(err, services.ErrEstimateLocked):
		utils.RespondWithError(c, http.StatusConflict, "Only draft estimates can be edited")
	case errors.Is(err, models.ErrInvalidTransition):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrEstimateNotApproved):
		utils.RespondWithError(c, http.StatusConflict, "Only approved estimates can be converted to invoices")
	case errors.Is(err, services.ErrEstimateIDExhausted), errors.Is(err, services.ErrInvoiceNumber):
		log.Warn("identifier space exhausted", zap.Error(err))
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Could not allocate an identifier, please retry")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		utils.RespondWithError(c, http.StatusConflict, "Record already exists")
	default:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}
