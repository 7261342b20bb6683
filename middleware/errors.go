package middleware

import (
	"folio/api/apperr"
	"folio/api/models"

	"github.com/gin-gonic/gin"
)

// abort stops the chain with the status apperr assigns to err and records
// err for the request logger.
func abort(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), models.ErrorResponse{Error: message})
}
