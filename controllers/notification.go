package controllers

import (
	"net/http"
	"strconv"

	"jobsbreeze-backend/services"
	"jobsbreeze-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationController struct {
	Notifications *services.NotificationService
	Log           *zap.Logger
}

// GetNotifications returns the SMS history, newest first. ?limit= caps the result.
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	logs, err := nc.Notifications.List(c.Request.Context(), owner, limit)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve notifications")
		return
	}
	c.JSON(http.StatusOK, logs)
}
