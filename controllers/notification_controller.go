// File: /controllers/notification_controller.go
package controllers

import (
	"github.com/gin-gonic/gin"
	"vastconnect-api/middleware"
	"vastconnect-api/services"
	"vastconnect-api/utils"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// GetNotifications gets paginated notifications for the current user
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	page, limit, err := utils.ParsePagination(c, 20)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	result, err := nc.notifications.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	utils.SendPaginated(c, result.Notifications, result.Page, result.Limit, result.Total)
}
