package controllers

import (
	"net/http"

	"bloodbridge-http-service/internal/app/middleware"
	"bloodbridge-http-service/internal/domain/services"
	"bloodbridge-http-service/internal/domain/services/container"
	"bloodbridge-http-service/internal/error/code"
	"bloodbridge-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// NotificationController serves in-app notifications for the logged-in user
type NotificationController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewNotificationController creates a new notification controller
func NewNotificationController(ctx *gin.Context, container *container.ServiceContainer) *NotificationController {
	return &NotificationController{
		Ctx:       ctx,
		Container: container,
	}
}

// recipient resolves the notification recipient from the auth context
func (c *NotificationController) recipient() (string, uint) {
	role, _ := c.Ctx.Get("role")
	recipientType, _ := role.(string)
	return recipientType, middleware.CurrentUserID(c.Ctx)
}

// GetNotifications lists the user's notifications, newest first
// @Summary      My notifications
// @Tags         Notification
// @Produce      json
// @Param        page query int false "page number, default 1"
// @Param        page_size query int false "page size, default 10"
// @Param        unread query bool false "only unread entries"
// @Success      200  {object}  map[string]interface{}
// @Router       /notifications [get]
// @Security     BearerAuth
func (c *NotificationController) GetNotifications() {
	recipientType, recipientID := c.recipient()
	page, pageSize := pagination(c.Ctx)
	unreadOnly := c.Ctx.Query("unread") == "true"

	notificationService := c.Container.GetService("notification").(services.InterfaceNotificationService)
	notifications, total, err := notificationService.GetNotifications(recipientType, recipientID, unreadOnly, page, pageSize)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list notifications: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"data":      notifications,
	})
}

// MarkRead marks one notification as read
// @Summary      Mark notification read
// @Tags         Notification
// @Produce      json
// @Param        id path int true "Notification ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id}/read [post]
// @Security     BearerAuth
func (c *NotificationController) MarkRead() {
	recipientType, recipientID := c.recipient()
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	notificationService := c.Container.GetService("notification").(services.InterfaceNotificationService)
	if err := notificationService.MarkRead(recipientType, recipientID, id); err != nil {
		if err.Error() == "notification not found" {
			response.FailWithMessage(c.Ctx, code.ErrNotificationNotFound, err.Error(), nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to mark notification: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// MarkAllRead marks every unread notification as read
// @Summary      Mark all notifications read
// @Tags         Notification
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /notifications/read-all [post]
// @Security     BearerAuth
func (c *NotificationController) MarkAllRead() {
	recipientType, recipientID := c.recipient()

	notificationService := c.Container.GetService("notification").(services.InterfaceNotificationService)
	updated, err := notificationService.MarkAllRead(recipientType, recipientID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to mark notifications: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{"updated": updated})
}

// HandleNotificationFunc returns a gin handler dispatching to the
// notification controller
func HandleNotificationFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewNotificationController(ctx, container)

		switch method {
		case "getNotifications":
			controller.GetNotifications()
		case "markRead":
			controller.MarkRead()
		case "markAllRead":
			controller.MarkAllRead()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}
