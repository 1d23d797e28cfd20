package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/authkeeper/internal/model"
)

const (
	msgSignupFailed = "Server error during signup."
	msgLoginFailed  = "Server error during login."
)

// handleError maps a flow error to a status code and body. fallback is the
// message returned for unexpected failures; their details are never exposed.
func handleError(err error, fallback string) (int, gin.H) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, gin.H{"errors": validationErr.Fields}
	}

	switch {
	case errors.Is(err, model.ErrDuplicateUsername):
		return http.StatusBadRequest, gin.H{"message": "Username is already taken."}
	case errors.Is(err, model.ErrDuplicateEmail):
		return http.StatusBadRequest, gin.H{"message": "Email is already taken."}
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusBadRequest, gin.H{"message": "Invalid email or password."}
	default:
		return http.StatusInternalServerError, gin.H{"message": fallback}
	}
}
