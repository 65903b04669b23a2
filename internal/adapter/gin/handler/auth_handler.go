package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/cache"
	"pmblueprints/internal/adapter/gin/middleware"
	"pmblueprints/internal/adapter/oauth"
	"pmblueprints/internal/usecase/auth"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	uc        auth.Usecase
	providers *oauth.Registry
	states    cache.OAuthStateStore
	log       *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(uc auth.Usecase, providers *oauth.Registry, states cache.OAuthStateStore, log *zap.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, providers: providers, states: states, log: log}
}

// RegisterRequest represents the HTTP request body for creating an account.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"max=50"`
	LastName  string `json:"last_name" binding:"max=50"`
	Company   string `json:"company" binding:"max=100"`
}

// LoginRequest represents the HTTP request body for password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest represents the HTTP request body for starting a reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest represents the HTTP request body for completing a reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// ChangePasswordRequest represents the HTTP request body for rotating a password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.uc.Register(c.Request.Context(), auth.RegisterRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.uc.Login(c.Request.Context(), auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// OAuthStart handles GET /v1/auth/oauth/:provider
// It returns the provider authorization URL the frontend redirects to.
func (h *AuthHandler) OAuthStart(c *gin.Context) {
	provider := c.Param("provider")
	redirectURI := c.Query("redirect_uri")
	if redirectURI == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "redirect_uri is required"})
		return
	}

	p, ok := h.providers.For(provider)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "unknown or unconfigured oauth provider",
		})
		return
	}

	state := uuid.NewString()
	if err := h.states.Put(c.Request.Context(), state, cache.OAuthState{Platform: provider}); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"provider": provider,
		"auth_url": p.AuthURL(state, redirectURI),
	})
}

// OAuthCallbackRequest represents the HTTP request body completing an
// OAuth login.
type OAuthCallbackRequest struct {
	State       string `json:"state" binding:"required"`
	Code        string `json:"code" binding:"required"`
	RedirectURI string `json:"redirect_uri" binding:"required"`
}

// OAuthCallback handles POST /v1/auth/oauth/callback
// It exchanges the authorization code, resolves the provider profile
// and opens a session for the matching account.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	var req OAuthCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	state, err := h.states.Consume(c.Request.Context(), req.State)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	if state == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "unknown or expired authorization state",
		})
		return
	}

	p, ok := h.providers.For(state.Platform)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "unknown or unconfigured oauth provider",
		})
		return
	}

	token, err := p.Exchange(c.Request.Context(), req.Code, req.RedirectURI)
	if err != nil {
		h.log.Warn("oauth login exchange failed", zap.String("provider", state.Platform), zap.Error(err))
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authorization code exchange failed",
		})
		return
	}

	profile, err := p.FetchProfile(c.Request.Context(), token.AccessToken)
	if err != nil {
		h.log.Warn("oauth profile fetch failed", zap.String("provider", state.Platform), zap.Error(err))
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "could not resolve the provider profile",
		})
		return
	}

	resp, err := h.uc.OAuthLogin(c.Request.Context(), auth.OAuthLoginRequest{
		Provider:  state.Platform,
		OAuthID:   profile.ID,
		Email:     profile.Email,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ForgotPassword handles POST /v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	if err := h.uc.ForgotPassword(c.Request.Context(), auth.ForgotPasswordRequest{Email: req.Email}); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If an account exists for this email, a reset link has been sent",
	})
}

// ResetPassword handles POST /v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	if err := h.uc.ResetPassword(c.Request.Context(), auth.ResetPasswordRequest{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	}); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

// ChangePassword handles POST /v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	if err := h.uc.ChangePassword(c.Request.Context(), auth.ChangePasswordRequest{
		UserID:          middleware.UserID(c),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been changed"})
}
