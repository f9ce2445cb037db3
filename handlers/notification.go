package handlers

import (
	"net/http"

	"marketplace/models"
	"marketplace/services/notification"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Service notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: svc}
}

func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	unread := c.Query("unread") == "true"
	list, err := h.Service.ListForTarget(c.Request.Context(), actorOf(c), unread)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	if err := h.Service.MarkRead(c.Request.Context(), actorOf(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
