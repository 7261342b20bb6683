package handlers

import (
	"errors"
	"net/http"
	"time"

	"folio/api/apperr"
	"folio/api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Store call budgets.
const (
	readTimeout  = 10 * time.Second
	writeTimeout = 15 * time.Second
)

// writeError answers with the status apperr.HTTPStatus assigns to err.
// Internal errors are logged and replaced by internalMsg; the other classes
// carry client-safe messages.
func writeError(c *gin.Context, log logrus.FieldLogger, err error, internalMsg string) {
	status := apperr.HTTPStatus(err)

	var (
		verr     *apperr.ValidationError
		notFound *apperr.NotFoundError
		conflict *apperr.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(status, models.ErrorResponse{Error: "Invalid input", Details: verr.Details})
	case errors.As(err, &notFound):
		c.JSON(status, models.ErrorResponse{Error: notFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(status, models.ErrorResponse{Error: conflict.Error()})
	case status == http.StatusInternalServerError:
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error(internalMsg)
		_ = c.Error(err)
		c.JSON(status, models.ErrorResponse{Error: internalMsg})
	default:
		c.JSON(status, models.ErrorResponse{Error: http.StatusText(status)})
	}
}

func writeBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid input", Details: bindingError(err).Details})
}
