package server

import (
	"errors"
	"net/http"

	countrydomain "github.com/geofin/countrypulse/internal/country/domain"
	"github.com/geofin/countrypulse/internal/providers/upstream"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// ErrorHandlingMiddleware maps errors collected by handlers to the HTTP
// taxonomy: validation 400, not found 404, upstream unavailable 503,
// everything else a generic 500.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, countrydomain.ErrInvalidName):
		return http.StatusBadRequest, errorResponse{
			Error:   "Validation failed",
			Details: map[string]string{"name": "is required"},
		}
	case errors.Is(err, countrydomain.ErrInvalidSort):
		return http.StatusBadRequest, errorResponse{
			Error:   "Validation failed",
			Details: map[string]string{"sort": "must be one of: gdp_desc, gdp_asc"},
		}
	case errors.Is(err, countrydomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorResponse{
			Error: "Country not found",
		}
	case errors.Is(err, upstream.ErrUnavailable):
		return http.StatusServiceUnavailable, errorResponse{
			Error:   "External data source unavailable",
			Details: unavailableDetails(err),
		}
	default:
		return http.StatusInternalServerError, errorResponse{
			Error: "Internal server error",
		}
	}
}

func unavailableDetails(err error) string {
	var srcErr *upstream.Error
	if errors.As(err, &srcErr) && srcErr.Source != "" {
		return "Could not fetch data from " + srcErr.Source
	}
	return "Could not fetch data from restcountries or open.er-api"
}
