package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/huger6/filseries/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.List)
	rg.GET("/count", h.UnreadCount)
	rg.PUT("/:id/read", h.MarkAsRead)
	rg.PUT("/read-all", h.MarkAllAsRead)
	rg.DELETE("/:id", h.Delete)
	rg.DELETE("/read", h.DeleteAllRead)
}

// List returns the user's notifications; ?unread=true restricts to unread.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		fail(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	onlyUnread := c.Query("unread") == "true"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	notifications, err := h.svc.List(ctx, userID.(string), onlyUnread)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": notifications})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		fail(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	count, err := h.svc.UnreadCount(ctx, userID.(string))
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	h.byID(c, h.svc.MarkAsRead, "notification marked as read")
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	h.byID(c, h.svc.Delete, "notification deleted")
}

func (h *NotificationHandler) byID(c *gin.Context, op func(context.Context, string, int64) error, message string) {
	userID, exists := c.Get("userID")
	if !exists {
		fail(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid notification id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := op(ctx, userID.(string), id); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			fail(c, http.StatusNotFound, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, message)
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	h.bulk(c, h.svc.MarkAllAsRead, "all notifications marked as read")
}

func (h *NotificationHandler) DeleteAllRead(c *gin.Context) {
	h.bulk(c, h.svc.DeleteAllRead, "read notifications deleted")
}

func (h *NotificationHandler) bulk(c *gin.Context, op func(context.Context, string) error, message string) {
	userID, exists := c.Get("userID")
	if !exists {
		fail(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := op(ctx, userID.(string)); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, message)
}
