package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mytime501/saramin/internal/model"
	"github.com/mytime501/saramin/internal/queue"
	"github.com/mytime501/saramin/internal/repository"
	"github.com/mytime501/saramin/internal/response"
)

type InterviewHandler struct {
	Interviews *repository.InterviewRepo
	Events     EventPublisher
	Log        *zap.Logger
}

func NewInterviewHandler(iv *repository.InterviewRepo, ev EventPublisher, log *zap.Logger) *InterviewHandler {
	return &InterviewHandler{Interviews: iv, Events: ev, Log: log}
}

type createInterviewReq struct {
	InterviewDate string `json:"interviewDate" validate:"required"`
}

type updateInterviewReq struct {
	Status   *model.InterviewStatus `json:"interviewStatus"`
	Feedback *string                `json:"feedback" validate:"omitempty,max=65535"`
}

// interviewLayouts are tried in order; zone-less forms are read as KST.
var interviewLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

var kst = time.FixedZone("KST", 9*60*60)

func parseInterviewDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range interviewLayouts {
		if t, err := time.ParseInLocation(layout, raw, kst); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Create handles POST /interviews/:applicationId.
//
// @Summary Schedule an interview
// @Tags interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationId path int true "application id"
// @Param body body createInterviewReq true "request body"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /interviews/{applicationId} [post]
func (h *InterviewHandler) Create(c echo.Context) error {
	appID, err := pathID(c, "applicationId")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	var req createInterviewReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	date, ok := parseInterviewDate(req.InterviewDate)
	if !ok {
		return response.ValidationError(c, "interviewDate must be an ISO 8601 date or date-time")
	}
	uid, _ := caller(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	iv, err := h.Interviews.Create(ctx, appID, uid, date)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrApplicationNotFound):
			return response.NotFound(c, "application not found")
		case errors.Is(err, repository.ErrInterviewExists):
			return response.Conflict(c, "INTERVIEW_EXISTS", "an interview already exists for this application")
		}
		return internalError(c, h.Log, "create interview failed", err)
	}

	h.Events.PublishAsync(queue.ApplicationEvent{
		Type:            queue.EventInterviewScheduled,
		ApplicationID:   iv.ApplicationID,
		UserID:          iv.UserID,
		JobID:           iv.JobID,
		InterviewID:     iv.ID,
		InterviewStatus: string(iv.Status),
		OccurredAt:      time.Now().UTC(),
	})
	return response.Created(c, iv)
}

// List handles GET /interviews.
//
// @Summary List interviews
// @Tags interviews
// @Produce json
// @Security BearerAuth
// @Param page query int false "page number"
// @Success 200 {object} response.Envelope
// @Router /interviews [get]
func (h *InterviewHandler) List(c echo.Context) error {
	uid, privileged := caller(c)
	f := repository.InterviewFilter{CallerID: uid, Privileged: privileged}
	var err error
	if f.ApplicationID, err = queryID(c, "applicationId"); err != nil {
		return response.BadRequest(c, err.Error())
	}
	if privileged {
		if f.UserID, err = queryID(c, "userId"); err != nil {
			return response.BadRequest(c, err.Error())
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Interviews.List(ctx, f)
	if err != nil {
		return internalError(c, h.Log, "list interviews failed", err)
	}
	return response.OK(c, list)
}

// Update handles PUT /interviews/:id.
//
// @Summary Update an interview
// @Tags interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "interview id"
// @Param body body updateInterviewReq true "request body"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interviews/{id} [put]
func (h *InterviewHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	var req updateInterviewReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	if req.Status == nil && req.Feedback == nil {
		return response.ValidationError(c, "interviewStatus or feedback is required")
	}
	if req.Status != nil && !req.Status.Valid() {
		return response.ValidationError(c, "interviewStatus must be one of [scheduled, completed, cancelled]")
	}
	uid, privileged := caller(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	iv, err := h.Interviews.Update(ctx, id, uid, privileged, repository.InterviewUpdate{
		Status:   req.Status,
		Feedback: req.Feedback,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInterviewNotFound):
			return response.NotFound(c, "interview not found")
		case errors.Is(err, repository.ErrInvalidTransition):
			return response.Error(c, http.StatusBadRequest, "INVALID_TRANSITION", err.Error())
		case errors.Is(err, repository.ErrFeedbackNotAllowed):
			return response.Error(c, http.StatusBadRequest, "FEEDBACK_NOT_ALLOWED", err.Error())
		}
		return internalError(c, h.Log, "update interview failed", err)
	}

	if req.Status != nil {
		h.Events.PublishAsync(queue.ApplicationEvent{
			Type:            queue.EventInterviewUpdated,
			ApplicationID:   iv.ApplicationID,
			UserID:          iv.UserID,
			JobID:           iv.JobID,
			InterviewID:     iv.ID,
			InterviewStatus: string(iv.Status),
			OccurredAt:      time.Now().UTC(),
		})
	}
	return response.OK(c, iv)
}

// Delete handles DELETE /interviews/:id.
//
// @Summary Delete an interview
// @Tags interviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "interview id"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /interviews/{id} [delete]
func (h *InterviewHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	uid, _ := caller(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Interviews.DeleteForUser(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrInterviewNotFound) {
			return response.NotFound(c, "interview not found")
		}
		return internalError(c, h.Log, "delete interview failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
