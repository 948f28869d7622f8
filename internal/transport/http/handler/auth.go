package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"todo-api/internal/app"
	"todo-api/internal/metrics"
	"todo-api/internal/transport/http/middleware"
	"todo-api/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// TokenRequest is the OAuth2 password form. The username field carries the email.
type TokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type tokenView struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func NewAuthHandler(authService *app.AuthService, m *metrics.Metrics, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, metrics: m, logger: logger}
}

func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		invalidRequest(c, "username and password form fields are required")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrIncorrectLogin) {
			h.metrics.AuthFailure("incorrect_login")
		}
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, tokenView{AccessToken: result.AccessToken, TokenType: result.TokenType})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	result, err := h.authService.Refresh(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, tokenView{AccessToken: result.AccessToken, TokenType: result.TokenType})
}
