package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mytime501/saramin/internal/config"
	"github.com/mytime501/saramin/internal/middleware"
	"github.com/mytime501/saramin/internal/model"
	"github.com/mytime501/saramin/internal/repository"
	"github.com/mytime501/saramin/internal/response"
	"github.com/mytime501/saramin/internal/utils"
)

// AuthHandler bundles dependencies for auth and profile endpoints.
type AuthHandler struct {
	Cfg    config.JWTConfig
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Log    *zap.Logger
}

func NewAuthHandler(cfg config.JWTConfig, u *repository.UserRepo, t *repository.TokenRepo, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Role     string `json:"role"` // user | companyuser
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutReq struct {
	RefreshToken string `json:"refreshToken"`
}

type profileReq struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

type loginResp struct {
	User           *model.User `json:"user"`
	AccessToken    string      `json:"accessToken"`
	RefreshToken   string      `json:"refreshToken"`
	AccessExpires  time.Time   `json:"accessExpires"`
	RefreshExpires time.Time   `json:"refreshExpires"`
}

type accessResp struct {
	AccessToken   string    `json:"accessToken"`
	AccessExpires time.Time `json:"accessExpires"`
}

func identityOf(u *model.User) utils.Identity {
	return utils.Identity{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Register creates a user. Admin cannot be self-assigned.
//
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerReq true "request body"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	trimAll(&req.Email, &req.Name)
	if err := validate.Struct(&req); err != nil {
		return response.ValidationError(c, validationMessage(err))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, req.Name, model.NormalizeRole(req.Role), h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return response.Conflict(c, "EMAIL_EXISTS", "email already registered")
		}
		return internalError(c, h.Log, "create user failed", err)
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return internalError(c, h.Log, "load user failed", err)
	}
	return response.Created(c, u)
}

// Login verifies the credentials and returns an access and refresh token.
//
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginReq true "request body"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
		}
		return internalError(c, h.Log, "load user failed", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return response.Unauthorized(c, "INVALID_PASSWORD", "password does not match")
	}

	access, err := utils.NewAccessToken(h.Cfg.Secret, identityOf(u), h.Cfg.AccessTTL())
	if err != nil {
		return internalError(c, h.Log, "issue access token failed", err)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.Secret, identityOf(u), h.Cfg.RefreshTTL())
	if err != nil {
		return internalError(c, h.Log, "issue refresh token failed", err)
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashToken(refresh.Token), refresh.Exp); err != nil {
		return internalError(c, h.Log, "store refresh token failed", err)
	}

	return response.OK(c, loginResp{
		User:           u,
		AccessToken:    access.Token,
		RefreshToken:   refresh.Token,
		AccessExpires:  access.Exp,
		RefreshExpires: refresh.Exp,
	})
}

// Refresh exchanges a valid, unrevoked refresh token for a new access
// token. The refresh token itself is not rotated.
//
// @Summary Issue a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body refreshReq true "request body"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	raw := strings.TrimSpace(req.RefreshToken)

	claims, err := utils.ParseToken(h.Cfg.Secret, raw, utils.TokenTypeRefresh)
	if err != nil {
		return response.Unauthorized(c, "INVALID_REFRESH", "refresh token is invalid or expired")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, utils.HashToken(raw))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshInvalid) {
			return response.Unauthorized(c, "INVALID_REFRESH", "refresh token is invalid or revoked")
		}
		return internalError(c, h.Log, "validate refresh token failed", err)
	}
	if userID != claims.ID {
		return response.Unauthorized(c, "INVALID_REFRESH", "refresh token is invalid or revoked")
	}

	// Reload so a renamed user or changed role is reflected immediately.
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return response.Unauthorized(c, "INVALID_REFRESH", "refresh token owner no longer exists")
		}
		return internalError(c, h.Log, "load user failed", err)
	}
	access, err := utils.NewAccessToken(h.Cfg.Secret, identityOf(u), h.Cfg.AccessTTL())
	if err != nil {
		return internalError(c, h.Log, "issue access token failed", err)
	}
	return response.OK(c, accessResp{AccessToken: access.Token, AccessExpires: access.Exp})
}

// Logout revokes the given refresh token, or every refresh token of the
// bearer when no token is given.
//
// @Summary Revoke refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param body body logoutReq false "request body"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		if err := h.Tokens.RevokeByHash(ctx, utils.HashToken(raw)); err != nil {
			return internalError(c, h.Log, "revoke refresh token failed", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	bearer, found := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	if !found {
		return response.BadRequest(c, "refreshToken or bearer token required")
	}
	claims, err := utils.ParseToken(h.Cfg.Secret, strings.TrimSpace(bearer), utils.TokenTypeAccess)
	if err != nil {
		return response.Forbidden(c, "TOKEN_INVALID", "access token is invalid")
	}
	if err := h.Tokens.RevokeAllForUser(ctx, claims.ID); err != nil {
		return internalError(c, h.Log, "revoke refresh tokens failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetProfile returns the caller's user record.
//
// @Summary Get own profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth/profile [get]
func (h *AuthHandler) GetProfile(c echo.Context) error {
	uid, _ := middleware.UserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return response.NotFound(c, "user not found")
		}
		return internalError(c, h.Log, "load user failed", err)
	}
	return response.OK(c, u)
}

// UpdateProfile changes the caller's name and/or password.
//
// @Summary Update own profile
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body profileReq true "request body"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Name != nil {
		trimAll(req.Name)
	}
	if err := validate.Struct(&req); err != nil {
		return response.ValidationError(c, validationMessage(err))
	}
	if req.Name == nil && req.Password == nil {
		return response.ValidationError(c, "name or password is required")
	}

	uid, _ := middleware.UserID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, uid, req.Name, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return response.NotFound(c, "user not found")
		}
		return internalError(c, h.Log, "update profile failed", err)
	}
	if req.Password != nil {
		// Existing sessions must log in again with the new password.
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			h.Log.Warn("revoke refresh tokens after password change failed", zap.Uint64("user_id", uid), zap.Error(err))
		}
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return internalError(c, h.Log, "load user failed", err)
	}
	return response.OK(c, u)
}

// DeleteProfile removes the caller's account and everything that
// references it.
//
// @Summary Delete own account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/profile [delete]
func (h *AuthHandler) DeleteProfile(c echo.Context) error {
	uid, _ := middleware.UserID(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return response.NotFound(c, "user not found")
		}
		return internalError(c, h.Log, "delete user failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
