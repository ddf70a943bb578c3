package handler

import (
	"math"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mytime501/saramin/internal/model"
	"github.com/mytime501/saramin/internal/repository"
	"github.com/mytime501/saramin/internal/response"
)

type ReviewHandler struct {
	Reviews *repository.ReviewRepo
	Jobs    *repository.JobRepo
	Log     *zap.Logger
}

func NewReviewHandler(reviews *repository.ReviewRepo, jobs *repository.JobRepo, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews, Jobs: jobs, Log: log}
}

type reviewReq struct {
	JobID      uint64 `json:"jobId" validate:"required,gt=0"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	ReviewText string `json:"reviewText" validate:"required,notblank,max=2000"`
}

type reviewListResp struct {
	Reviews       []model.JobReview `json:"reviews"`
	AverageRating float64           `json:"averageRating"`
	Count         int               `json:"count"`
}

// Create handles POST /jobreviews. The body is validated before the job is
// looked up so a malformed review never touches the database.
//
// @Summary Review a job
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body reviewReq true "request body"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /jobreviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	trimAll(&req.ReviewText)
	if err := validate.Struct(&req); err != nil {
		return response.ValidationError(c, validationMessage(err))
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

	rv := &model.JobReview{JobID: req.JobID, UserID: uid, Rating: req.Rating, ReviewText: req.ReviewText}
	if err := h.Reviews.Create(ctx, rv); err != nil {
		return internalError(c, h.Log, "create review failed", err)
	}
	return response.Created(c, rv)
}

// ListByJob handles GET /jobreviews/:jobId.
//
// @Summary List reviews of a job
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param jobId path int true "job id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /jobreviews/{jobId} [get]
func (h *ReviewHandler) ListByJob(c echo.Context) error {
	jobID, err := pathID(c, "jobId")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	reviews, avg, err := h.Reviews.ListByJob(ctx, jobID)
	if err != nil {
		return internalError(c, h.Log, "list reviews failed", err)
	}
	return response.OK(c, reviewListResp{
		Reviews:       reviews,
		AverageRating: math.Round(avg*100) / 100,
		Count:         len(reviews),
	})
}
