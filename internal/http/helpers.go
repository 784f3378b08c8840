package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"accounts-service/internal/auth"
	"accounts-service/internal/database/users"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error
// response. The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError maps a core error to its HTTP status and body. The taxonomy
// is closed: anything unrecognized is treated as an internal failure.
func respondError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, users.ErrNotFound):
		respondNotFound(c, "user")
	case errors.Is(err, users.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "user already exists with this email"})
	case errors.Is(err, users.ErrMissingCredential):
		respondBadRequest(c, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
	case errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
	case errors.Is(err, auth.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "insufficient permissions"})
	case isValidationError(err):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}

// isValidationError reports whether the error is one of the recoverable
// input-validation failures.
func isValidationError(err error) bool {
	for _, target := range []error{
		auth.ErrUsernameRequired,
		auth.ErrUsernameInvalid,
		auth.ErrEmailRequired,
		auth.ErrEmailInvalid,
		auth.ErrPasswordRequired,
		auth.ErrPasswordTooShort,
		auth.ErrPasswordTooLong,
		auth.ErrInvalidRole,
		auth.ErrEmptyUpdate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
