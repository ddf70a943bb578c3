package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mytime501/saramin/internal/model"
	"github.com/mytime501/saramin/internal/repository"
	"github.com/mytime501/saramin/internal/response"
)

type BookmarkHandler struct {
	Bookmarks *repository.BookmarkRepo
	Jobs      *repository.JobRepo
	Log       *zap.Logger
}

func NewBookmarkHandler(b *repository.BookmarkRepo, jobs *repository.JobRepo, log *zap.Logger) *BookmarkHandler {
	return &BookmarkHandler{Bookmarks: b, Jobs: jobs, Log: log}
}

type bookmarkReq struct {
	JobID uint64 `json:"jobId" validate:"required,gt=0"`
}

type bookmarkListResp struct {
	Bookmarks  []model.Bookmark    `json:"bookmarks"`
	Pagination response.Pagination `json:"pagination"`
}

// Toggle handles POST /bookmarks: 201 when the bookmark is created, 200
// when an existing one is removed.
//
// @Summary Toggle a bookmark
// @Tags bookmarks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body bookmarkReq true "request body"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookmarks [post]
func (h *BookmarkHandler) Toggle(c echo.Context) error {
	var req bookmarkReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	uid, _ := caller(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	exists, err := h.Jobs.Exists(ctx, req.JobID)
	if err != nil {
		return internalError(c, h.Log, "check job failed", err)
	}
	if !exists {
		return response.NotFound(c, "job not found")
	}

	on, err := h.Bookmarks.Toggle(ctx, uid, req.JobID)
	if err != nil {
		return internalError(c, h.Log, "toggle bookmark failed", err)
	}
	status := http.StatusOK
	if on {
		status = http.StatusCreated
	}
	return response.Success(c, status, map[string]any{"jobId": req.JobID, "bookmarked": on})
}

// List handles GET /bookmarks.
//
// @Summary List bookmarks
// @Tags bookmarks
// @Produce json
// @Security BearerAuth
// @Param page query int false "page number"
// @Success 200 {object} response.Envelope
// @Router /bookmarks [get]
func (h *BookmarkHandler) List(c echo.Context) error {
	uid, _ := caller(c)
	page := pageParam(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, total, err := h.Bookmarks.ListByUser(ctx, uid, page)
	if err != nil {
		return internalError(c, h.Log, "list bookmarks failed", err)
	}
	for i := range list {
		list[i].Job = list[i].Job.WithPlaceholders()
	}
	return response.OK(c, bookmarkListResp{Bookmarks: list, Pagination: pagination(page, total)})
}
