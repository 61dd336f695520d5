package controllers

import (
	"net/http"

	"github.com/Kariqs/smartbite-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var notificationStatuses = map[string]bool{
	models.NotificationStatusPending:    true,
	models.NotificationStatusInProgress: true,
	models.NotificationStatusSent:       true,
	models.NotificationStatusFailed:     true,
}

// GetNotifications lists notification jobs for the admin dashboard,
// optionally filtered by status.
func (c *Controller) GetNotifications(ctx *gin.Context) {
	p := parsePage(ctx, 20)
	query := c.DB.WithContext(ctx.Request.Context()).Model(&models.NotificationJob{})

	if status := ctx.Query("status"); status != "" {
		if !notificationStatuses[status] {
			sendErrorResponse(ctx, http.StatusBadRequest, "status must be pending, in_progress, sent or failed")
			return
		}
		query = query.Where("status = ?", status)
	}
	if kind := ctx.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch notifications", err)
		return
	}

	var jobs []models.NotificationJob
	if err := query.Order("id " + sortDirection(ctx)).Limit(p.Limit).Offset(p.Offset).Find(&jobs).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch notifications", err)
		return
	}

	response := gin.H{
		"notifications": jobs,
		"metadata":      p.metadata(total),
	}
	if c.Notifier != nil {
		if stats, err := c.Notifier.Stats(ctx.Request.Context()); err == nil {
			response["stats"] = stats
		}
	}
	sendJSONResponse(ctx, http.StatusOK, response)
}
