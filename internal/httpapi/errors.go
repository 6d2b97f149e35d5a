package httpapi

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-flavor-inventory/internal/apperr"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// abortWithError renders err as {"error": {"code", "message"}} with the
// status of its category.
func abortWithError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("httpapi: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{
		Code:    apperr.TextCode(err),
		Message: apperr.Message(err),
	}})
}
