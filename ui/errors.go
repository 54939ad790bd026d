package ui

import (
	"log"
	"net/http"

	"gundash/internal/errors"

	"github.com/gin-gonic/gin"
)

// errorStatus maps an application error code to an HTTP status
func errorStatus(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error", "code"} with the mapped status
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status >= 500 {
		log.Printf("[%s %s] %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
