package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/authkeeper/internal/api/http/cookie"
	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
)

// AuthService defines user registration and login operations.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.Session, error)
	Login(ctx context.Context, email, password string) (model.Session, error)
}

// Auth handles HTTP endpoints for authentication.
type Auth struct {
	authService    AuthService
	cookies        *cookie.Session
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(
	authService AuthService,
	cookies *cookie.Session,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		authService:    authService,
		cookies:        cookies,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Signup registers a user and opens a session for it.
func (h *Auth) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Auth handler: malformed signup body", "error", err.Error())
		c.JSON(handleError(invalidBody(), msgSignupFailed))
		return
	}
	req.normalize()

	if err := req.Validate(); err != nil {
		h.logger.Debug("Auth handler: signup validation failed", "error", err.Error())
		c.JSON(handleError(err, msgSignupFailed))
		return
	}

	session, err := h.authService.Register(c.Request.Context(), req.params())
	if err != nil {
		h.logger.Info("Auth handler: signup failed",
			"email", req.Email,
			"error", err.Error())
		c.JSON(handleError(err, msgSignupFailed))
		return
	}

	h.cookies.Set(c, session.Token)

	h.logger.Info("Auth handler: signup completed",
		"user_id", session.User.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully!",
		"user":    session.User.Public(),
	})
}

// Login verifies credentials and opens a session.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Auth handler: malformed login body", "error", err.Error())
		c.JSON(handleError(invalidBody(), msgLoginFailed))
		return
	}
	req.normalize()

	if err := req.Validate(); err != nil {
		h.logger.Debug("Auth handler: login validation failed", "error", err.Error())
		c.JSON(handleError(err, msgLoginFailed))
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Info("Auth handler: login failed",
			"email", req.Email,
			"error", err.Error())
		c.JSON(handleError(err, msgLoginFailed))
		return
	}

	h.cookies.Set(c, session.Token)

	h.logger.Info("Auth handler: login completed",
		"user_id", session.User.ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged in successfully!",
		"user":    session.User.Public(),
	})
}

// Logout clears the session cookie. It succeeds whether or not a session existed.
func (h *Auth) Logout(c *gin.Context) {
	h.cookies.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully!"})
}

// GetMe returns the user the session guard attached to the request.
func (h *Auth) GetMe(c *gin.Context) {
	user, ok := h.contextManager.GetUserFromContext(c.Request.Context())
	if !ok {
		h.logger.Error("Auth handler: getMe reached without an authenticated user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}
