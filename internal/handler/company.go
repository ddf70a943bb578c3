package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mytime501/saramin/internal/model"
	"github.com/mytime501/saramin/internal/repository"
	"github.com/mytime501/saramin/internal/response"
)

type CompanyHandler struct {
	Companies *repository.CompanyRepo
	Log       *zap.Logger
}

func NewCompanyHandler(companies *repository.CompanyRepo, log *zap.Logger) *CompanyHandler {
	return &CompanyHandler{Companies: companies, Log: log}
}

type companyReq struct {
	Name          string `json:"name" validate:"required,min=1,max=100"`
	Location      string `json:"location" validate:"max=100"`
	Industry      string `json:"industry" validate:"max=100"`
	Website       string `json:"website" validate:"omitempty,url,max=255"`
	ContactNumber string `json:"contactNumber" validate:"omitempty,phone"`
}

func bindCompany(c echo.Context) (*model.Company, error) {
	var req companyReq
	if err := c.Bind(&req); err != nil {
		return nil, response.BadRequest(c, "invalid request body")
	}
	trimAll(&req.Name, &req.Location, &req.Industry, &req.Website, &req.ContactNumber)
	if err := validate.Struct(&req); err != nil {
		return nil, response.ValidationError(c, validationMessage(err))
	}
	return &model.Company{
		Name:          req.Name,
		Location:      req.Location,
		Industry:      req.Industry,
		Website:       req.Website,
		ContactNumber: req.ContactNumber,
	}, nil
}

type companyListResp struct {
	Companies  []model.Company     `json:"companies"`
	Pagination response.Pagination `json:"pagination"`
}

// List handles GET /companies?name=&page=.
//
// @Summary List companies
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param name query string false "name filter"
// @Param page query int false "page number"
// @Success 200 {object} response.Envelope
// @Router /companies [get]
func (h *CompanyHandler) List(c echo.Context) error {
	page := pageParam(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, total, err := h.Companies.List(ctx, c.QueryParam("name"), page)
	if err != nil {
		return internalError(c, h.Log, "list companies failed", err)
	}
	return response.OK(c, companyListResp{Companies: list, Pagination: pagination(page, total)})
}

// Get handles GET /companies/:id.
//
// @Summary Get a company
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "company id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	co, err := h.Companies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return response.NotFound(c, "company not found")
		}
		return internalError(c, h.Log, "load company failed", err)
	}
	return response.OK(c, co)
}

// Create handles POST /companies.
//
// @Summary Create a company
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body companyReq true "request body"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /companies [post]
func (h *CompanyHandler) Create(c echo.Context) error {
	co, err := bindCompany(c)
	if co == nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Companies.Create(ctx, co); err != nil {
		if errors.Is(err, repository.ErrCompanyExists) {
			return response.Conflict(c, "COMPANY_EXISTS", "company name already registered")
		}
		return internalError(c, h.Log, "create company failed", err)
	}
	created, err := h.Companies.GetByID(ctx, co.ID)
	if err != nil {
		return internalError(c, h.Log, "load company failed", err)
	}
	return response.Created(c, created)
}

// Update handles PUT /companies/:id.
//
// @Summary Update a company
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "company id"
// @Param body body companyReq true "request body"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /companies/{id} [put]
func (h *CompanyHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	co, err := bindCompany(c)
	if co == nil {
		return err
	}
	co.ID = id

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Companies.Update(ctx, co); err != nil {
		switch {
		case errors.Is(err, repository.ErrCompanyNotFound):
			return response.NotFound(c, "company not found")
		case errors.Is(err, repository.ErrCompanyExists):
			return response.Conflict(c, "COMPANY_EXISTS", "company name already registered")
		}
		return internalError(c, h.Log, "update company failed", err)
	}
	updated, err := h.Companies.GetByID(ctx, id)
	if err != nil {
		return internalError(c, h.Log, "load company failed", err)
	}
	return response.OK(c, updated)
}

// Delete handles DELETE /companies/:id. Jobs of the company are kept and
// lose their company reference.
//
// @Summary Delete a company
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "company id"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Companies.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return response.NotFound(c, "company not found")
		}
		return internalError(c, h.Log, "delete company failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
