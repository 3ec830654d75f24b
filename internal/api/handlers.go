package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/service"
)

// abortWithError maps service failures onto HTTP statuses: malformed input
// is 400, conflicts 409, permission failures 403, absent entities 404.
// Anything unrecognized is logged and hidden behind a 500.
func abortWithError(c *gin.Context, err error) {
	var validationError *service.ValidationError
	switch {
	case errors.As(err, &validationError):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationError.Message, "field": validationError.Field})
	case errors.Is(err, service.ErrSelfSubscription):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyExists), errors.Is(err, service.ErrDuplicateSubscription):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
