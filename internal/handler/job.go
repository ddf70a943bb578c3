package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mytime501/saramin/internal/model"
	"github.com/mytime501/saramin/internal/repository"
	"github.com/mytime501/saramin/internal/response"
)

// JobHandler serves the job catalog.
type JobHandler struct {
	Jobs *repository.JobRepo
	Log  *zap.Logger
}

func NewJobHandler(jobs *repository.JobRepo, log *zap.Logger) *JobHandler {
	return &JobHandler{Jobs: jobs, Log: log}
}

// jobReq is the body of POST /jobs and PUT /jobs/:id.
type jobReq struct {
	Title          string   `json:"title" validate:"required,min=2,max=100"`
	Company        string   `json:"company" validate:"required,min=1,max=100"`
	Location       string   `json:"location" validate:"required,min=1,max=100"`
	Experience     string   `json:"experience" validate:"required,min=1,max=50"`
	Education      string   `json:"education" validate:"required,min=1,max=50"`
	EmploymentType string   `json:"employmentType" validate:"required,oneof=정규직 계약직 인턴 파견직 프리랜서 아르바이트"`
	Deadline       string   `json:"deadline" validate:"required,datetime=2006-01-02"`
	TechStack      []string `json:"techStack" validate:"required,min=1,dive,notblank"`
	Salary         int64    `json:"salary" validate:"gt=0"`
	Description    string   `json:"description" validate:"required,min=10"`
	Link           string   `json:"link" validate:"required,url"`
}

func (r *jobReq) trim() {
	trimAll(&r.Title, &r.Company, &r.Location, &r.Experience, &r.Education,
		&r.EmploymentType, &r.Deadline, &r.Description, &r.Link)
}

func (r *jobReq) job() *model.Job {
	return &model.Job{
		Title:          r.Title,
		Company:        r.Company,
		Location:       r.Location,
		Experience:     r.Experience,
		Education:      r.Education,
		EmploymentType: r.EmploymentType,
		Deadline:       r.Deadline,
		TechStack:      model.JoinTechStack(r.TechStack),
		Salary:         strconv.FormatInt(r.Salary, 10),
		Description:    r.Description,
		Link:           r.Link,
	}
}

// bindJob binds and validates a job body. Every violation is reported in a
// single message and nothing reaches the database on failure.
func bindJob(c echo.Context) (*model.Job, error) {
	var req jobReq
	if err := c.Bind(&req); err != nil {
		return nil, response.BadRequest(c, "invalid request body")
	}
	req.trim()
	if err := validate.Struct(&req); err != nil {
		return nil, response.ValidationError(c, validationMessage(err))
	}
	return req.job(), nil
}

type jobListResp struct {
	Jobs       []model.JobSummary  `json:"jobs"`
	Pagination response.Pagination `json:"pagination"`
}

type jobDetailResp struct {
	Job     model.Job   `json:"job"`
	Related []model.Job `json:"relatedJobs"`
}

// List handles GET /jobs.
//
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param page query int false "page number"
// @Param location query string false "location filter"
// @Param experience query string false "experience filter"
// @Param salary query string false "salary filter"
// @Param techStack query string false "tech stack filter"
// @Param company query string false "company name filter"
// @Param keyword query string false "title keyword"
// @Param position query string false "position keyword"
// @Param sortBy query string false "id, title, company, location, experience, education, employmentType, deadline, salary, views or createdAt"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /jobs [get]
func (h *JobHandler) List(c echo.Context) error {
	q := repository.JobSearchQuery{
		Location:   strings.TrimSpace(c.QueryParam("location")),
		Experience: strings.TrimSpace(c.QueryParam("experience")),
		Salary:     strings.TrimSpace(c.QueryParam("salary")),
		TechStack:  strings.TrimSpace(c.QueryParam("techStack")),
		Company:    strings.TrimSpace(c.QueryParam("company")),
		Keyword:    strings.TrimSpace(c.QueryParam("keyword")),
		Position:   strings.TrimSpace(c.QueryParam("position")),
		SortBy:     c.QueryParam("sortBy"),
		SortOrder:  c.QueryParam("sortOrder"),
		Page:       pageParam(c),
	}
	if q.SortBy != "" && !repository.IsJobSortField(q.SortBy) {
		return response.ValidationError(c, "sortBy is not a sortable field")
	}
	if q.SortOrder != "" && !strings.EqualFold(q.SortOrder, "asc") && !strings.EqualFold(q.SortOrder, "desc") {
		return response.ValidationError(c, "sortOrder must be one of [ASC, DESC]")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	jobs, total, err := h.Jobs.Search(ctx, q)
	if err != nil {
		return internalError(c, h.Log, "search jobs failed", err)
	}
	for i := range jobs {
		jobs[i] = jobs[i].WithPlaceholders()
	}
	return response.OK(c, jobListResp{Jobs: jobs, Pagination: pagination(q.Page, total)})
}

// Get handles GET /jobs/:id. Every successful read counts as one view.
//
// @Summary Get a job with related jobs
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "job id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Jobs.IncrementViews(ctx, id); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return response.NotFound(c, "job not found")
		}
		return internalError(c, h.Log, "increment views failed", err)
	}
	job, err := h.Jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return response.NotFound(c, "job not found")
		}
		return internalError(c, h.Log, "load job failed", err)
	}
	related, err := h.Jobs.Related(ctx, job, repository.RelatedLimit)
	if err != nil {
		return internalError(c, h.Log, "load related jobs failed", err)
	}
	for i := range related {
		related[i] = related[i].WithPlaceholders()
	}
	return response.OK(c, jobDetailResp{Job: job.WithPlaceholders(), Related: related})
}

// Create handles POST /jobs.
//
// @Summary Create a job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body jobReq true "request body"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /jobs [post]
func (h *JobHandler) Create(c echo.Context) error {
	job, err := bindJob(c)
	if job == nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Jobs.Create(ctx, job); err != nil {
		if errors.Is(err, repository.ErrJobLinkExists) {
			return response.Conflict(c, "LINK_EXISTS", "a job with this link already exists")
		}
		return internalError(c, h.Log, "create job failed", err)
	}
	created, err := h.Jobs.GetByID(ctx, job.ID)
	if err != nil {
		return internalError(c, h.Log, "load job failed", err)
	}
	return response.Created(c, created)
}

// Update handles PUT /jobs/:id. The view counter restarts at zero.
//
// @Summary Update a job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "job id"
// @Param body body jobReq true "request body"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /jobs/{id} [put]
func (h *JobHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	job, err := bindJob(c)
	if job == nil {
		return err
	}
	job.ID = id

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Jobs.Update(ctx, job); err != nil {
		switch {
		case errors.Is(err, repository.ErrJobNotFound):
			return response.NotFound(c, "job not found")
		case errors.Is(err, repository.ErrJobLinkExists):
			return response.Conflict(c, "LINK_EXISTS", "a job with this link already exists")
		}
		return internalError(c, h.Log, "update job failed", err)
	}
	updated, err := h.Jobs.GetByID(ctx, id)
	if err != nil {
		return internalError(c, h.Log, "load job failed", err)
	}
	return response.OK(c, updated)
}

// Delete handles DELETE /jobs/:id.
//
// @Summary Delete a job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "job id"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /jobs/{id} [delete]
func (h *JobHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Jobs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return response.NotFound(c, "job not found")
		}
		return internalError(c, h.Log, "delete job failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
