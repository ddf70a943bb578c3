package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mytime501/saramin/internal/repository"
	"github.com/mytime501/saramin/internal/response"
)

// NotificationHandler exposes the notifications written by the queue
// consumer.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
	Log           *zap.Logger
}

func NewNotificationHandler(n *repository.NotificationRepo, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{Notifications: n, Log: log}
}

// List handles GET /notifications?unread=true.
//
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "only unread"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	unread := false
	if raw := c.QueryParam("unread"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return response.BadRequest(c, "unread must be true or false")
		}
		unread = v
	}
	uid, _ := caller(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Notifications.ListByUser(ctx, uid, unread)
	if err != nil {
		return internalError(c, h.Log, "list notifications failed", err)
	}
	return response.OK(c, list)
}

// MarkRead handles PATCH /notifications/:id/read.
//
// @Summary Mark a notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "notification id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	uid, _ := caller(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return response.NotFound(c, "notification not found")
		}
		return internalError(c, h.Log, "mark notification read failed", err)
	}
	return response.OK(c, map[string]any{"id": id, "isRead": true})
}
