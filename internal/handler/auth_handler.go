package handler

import (
	"context"
	"net/http"

	"chesslounge/backend/internal/auth"
	"chesslounge/backend/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GoogleAuthenticator is implemented by auth.Google.
type GoogleAuthenticator interface {
	LoginURL() (string, error)
	Exchange(ctx context.Context, code string) (*auth.GoogleProfile, error)
}

// LichessAuthenticator is implemented by auth.Lichess.
type LichessAuthenticator interface {
	LoginURL() (string, error)
	Exchange(ctx context.Context, code string) (*auth.LichessProfile, error)
}

// region --- DTOs ---

// VerifyInput carries the authorization code returned to the frontend.
type VerifyInput struct {
	Code string `json:"code" binding:"required" example:"4/0AY0e-g7..."`
}

// LoginResponse is returned by a successful verification.
type LoginResponse struct {
	Success bool            `json:"success" example:"true"`
	Token   string          `json:"token"`
	User    *models.Account `json:"user"`
	IsNew   bool            `json:"isNew"`
}

// endregion

// AuthHandler serves the OAuth login flows.
type AuthHandler struct {
	google   GoogleAuthenticator
	lichess  LichessAuthenticator
	accounts *auth.Service
	logger   *zap.Logger
}

func NewAuthHandler(google GoogleAuthenticator, lichess LichessAuthenticator, accounts *auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{google: google, lichess: lichess, accounts: accounts, logger: logger}
}

// RedirectGoogle godoc
// @Summary      Start Google login
// @Description  Redirects to Google's consent screen.
// @Tags         auth
// @Success      302
// @Failure      500  {object}  ErrorResponse
// @Router       /login_google [get]
func (h *AuthHandler) RedirectGoogle(c *gin.Context) {
	url, err := h.google.LoginURL()
	if err != nil {
		respondError(c, h.logger, err, "Unable to start Google login")
		return
	}
	c.Redirect(http.StatusFound, url)
}

// VerifyGoogle godoc
// @Summary      Finish Google login
// @Description  Exchanges the authorization code, creating the account on first login.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body VerifyInput true "Authorization code"
// @Success      200  {object}  LoginResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /login_google/verify [post]
func (h *AuthHandler) VerifyGoogle(c *gin.Context) {
	var input VerifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Authorization code is required"})
		return
	}

	profile, err := h.google.Exchange(c.Request.Context(), input.Code)
	if err != nil {
		respondError(c, h.logger, err, "Internal server error")
		return
	}

	result, err := h.accounts.LoginGoogle(c.Request.Context(), profile)
	if err != nil {
		respondError(c, h.logger, err, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, newLoginResponse(result))
}

// RedirectLichess godoc
// @Summary      Start Lichess login
// @Description  Redirects to Lichess's consent screen using PKCE.
// @Tags         auth
// @Success      302
// @Failure      500  {object}  ErrorResponse
// @Router       /login_lichess [get]
func (h *AuthHandler) RedirectLichess(c *gin.Context) {
	url, err := h.lichess.LoginURL()
	if err != nil {
		respondError(c, h.logger, err, "Unable to start Lichess login")
		return
	}
	c.Redirect(http.StatusFound, url)
}

// VerifyLichess godoc
// @Summary      Finish Lichess login
// @Description  Exchanges the authorization code, creating the account on first login.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body VerifyInput true "Authorization code"
// @Success      200  {object}  LoginResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /login_lichess/verify_auth [post]
func (h *AuthHandler) VerifyLichess(c *gin.Context) {
	var input VerifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Authorization code is required"})
		return
	}

	profile, err := h.lichess.Exchange(c.Request.Context(), input.Code)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch user information")
		return
	}

	result, err := h.accounts.LoginLichess(c.Request.Context(), profile)
	if err != nil {
		respondError(c, h.logger, err, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, newLoginResponse(result))
}

func newLoginResponse(result *auth.LoginResult) LoginResponse {
	return LoginResponse{
		Success: true,
		Token:   result.Token,
		User:    result.Account,
		IsNew:   result.IsNew,
	}
}
