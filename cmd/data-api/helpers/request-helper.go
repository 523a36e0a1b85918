package helpers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/msdss/data-api/cmd/data-api/models"
	"github.com/msdss/data-api/internal"
)

// HandleError renders a manager failure. Typed API errors carry their own
// status and code; anything else is an internal server error.
func HandleError(c *gin.Context, err error) {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		c.JSON(
			apiErr.Status,
			gin.H{
				"error":   apiErr.Code,
				"status":  apiErr.Status,
				"message": apiErr.Message,
			})
		return
	}
	HandleInternalServerError(c, err)
}

func HandleInternalServerError(c *gin.Context, err error) {
	if c == nil {
		panic("HandleInternalServerError: c is nil")
	}
	if err == nil {
		err = errors.New("unknown error")
	}

	erx := internal.SanitizeString(err.Error())
	zap.S().Errorw(
		"Internal server error",
		"error", erx,
	)

	c.JSON(
		http.StatusInternalServerError,
		gin.H{
			"error":   erx,
			"status":  http.StatusInternalServerError,
			"message": "The server had an internal error.",
		})
}

func HandleInvalidInputError(c *gin.Context, err error) {
	if c == nil {
		panic("HandleInvalidInputError: c is nil")
	}
	if err == nil {
		err = errors.New("unknown error")
	}
	erx := internal.SanitizeString(err.Error())
	zap.S().Errorw(
		"Invalid input error",
		"error", erx,
	)

	c.JSON(
		http.StatusBadRequest,
		gin.H{
			"error":   erx,
			"status":  http.StatusBadRequest,
			"message": "You have provided a wrong input. Please check your parameters.",
		})
}
