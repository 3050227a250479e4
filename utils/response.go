package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondWithError aborts the request with the {"error": message} envelope.
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// RespondWithFieldErrors aborts with a validation envelope keyed by input field.
func RespondWithFieldErrors(c *gin.Context, status int, fields map[string]string) {
	c.AbortWithStatusJSON(status, gin.H{"error": "Validation failed", "fields": fields})
}
