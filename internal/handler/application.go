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

// ApplicationHandler serves the application lifecycle. Committed changes
// are announced on the event queue.
type ApplicationHandler struct {
	Apps   *repository.ApplicationRepo
	Jobs   *repository.JobRepo
	Events EventPublisher
	Log    *zap.Logger
}

func NewApplicationHandler(apps *repository.ApplicationRepo, jobs *repository.JobRepo, ev EventPublisher, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{Apps: apps, Jobs: jobs, Events: ev, Log: log}
}

type applyReq struct {
	JobID  uint64  `json:"jobId" validate:"required,gt=0"`
	Resume *string `json:"resume" validate:"omitempty,max=65535"`
}

type applicationListResp struct {
	Applications []model.ApplicationView `json:"applications"`
	Pagination   response.Pagination     `json:"pagination"`
}

// Apply handles POST /applications. A first application answers 201; a
// re-application after withdrawal reuses the row and answers 200.
//
// @Summary Apply to a job
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body applyReq true "request body"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Apply(c echo.Context) error {
	var req applyReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	if req.Resume != nil && strings.TrimSpace(*req.Resume) == "" {
		req.Resume = nil
	}
	uid, _ := caller(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	job, err := h.Jobs.GetByID(ctx, req.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return response.NotFound(c, "job not found")
		}
		return internalError(c, h.Log, "load job failed", err)
	}

	app, action, err := h.Apps.Apply(ctx, uid, req.JobID, req.Resume)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyApplied) {
			return response.Error(c, http.StatusBadRequest, "ALREADY_APPLIED", "already applied to this job")
		}
		return internalError(c, h.Log, "apply failed", err)
	}

	ev := queue.ApplicationEvent{
		Type:          queue.EventApplicationSubmitted,
		ApplicationID: app.ID,
		UserID:        uid,
		JobID:         job.ID,
		JobTitle:      job.Title,
		OccurredAt:    time.Now().UTC(),
	}
	status := http.StatusCreated
	if action == model.ApplyReactivate {
		ev.Type = queue.EventApplicationResubmitted
		status = http.StatusOK
	}
	h.Events.PublishAsync(ev)
	return response.Success(c, status, app)
}

// Withdraw handles DELETE /applications/:id.
//
// @Summary Withdraw an application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "application id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{id} [delete]
func (h *ApplicationHandler) Withdraw(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	uid, _ := caller(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	app, err := h.Apps.Withdraw(ctx, id, uid)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrApplicationNotFound):
			return response.NotFound(c, "application not found")
		case errors.Is(err, repository.ErrForbidden):
			return response.Forbidden(c, "FORBIDDEN", "application belongs to another user")
		}
		return internalError(c, h.Log, "withdraw failed", err)
	}

	h.Events.PublishAsync(queue.ApplicationEvent{
		Type:          queue.EventApplicationWithdrawn,
		ApplicationID: app.ID,
		UserID:        app.UserID,
		JobID:         app.JobID,
		OccurredAt:    time.Now().UTC(),
	})
	return response.OK(c, app)
}

// List handles GET /applications. Filters other than status and jobId are
// ignored for plain users, who only ever see their own rows.
//
// @Summary List applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "application status"
// @Param jobId query int false "job id"
// @Param userId query int false "user id, company users and admins only"
// @Param page query int false "page number"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c echo.Context) error {
	uid, privileged := caller(c)
	f := repository.ApplicationFilter{
		CallerID:   uid,
		Privileged: privileged,
		Status:     model.ApplicationStatus(strings.TrimSpace(c.QueryParam("status"))),
		Page:       pageParam(c),
	}
	if f.Status != "" && !f.Status.Valid() {
		return response.ValidationError(c, "status must be one of [지원 완료, 지원 취소]")
	}
	var err error
	if f.JobID, err = queryID(c, "jobId"); err != nil {
		return response.BadRequest(c, err.Error())
	}
	if privileged {
		if f.UserID, err = queryID(c, "userId"); err != nil {
			return response.BadRequest(c, err.Error())
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	apps, total, err := h.Apps.List(ctx, f)
	if err != nil {
		return internalError(c, h.Log, "list applications failed", err)
	}
	return response.OK(c, applicationListResp{Applications: apps, Pagination: pagination(f.Page, total)})
}

// Summary handles GET /applications/job/:jobId/summary.
//
// @Summary Application counts per status
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param jobId path int true "job id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/job/{jobId}/summary [get]
func (h *ApplicationHandler) Summary(c echo.Context) error {
	jobID, err := pathID(c, "jobId")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Apps.Summary(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return response.NotFound(c, "job not found")
		}
		return internalError(c, h.Log, "summarize applications failed", err)
	}
	s.JobTitle = model.OrPlaceholder(s.JobTitle)
	s.CompanyName = model.OrPlaceholder(s.CompanyName)
	return response.OK(c, s)
}
