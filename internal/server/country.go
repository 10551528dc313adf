package server

import (
	"net/http"
	"os"
	"time"

	countrydomain "github.com/geofin/countrypulse/internal/country/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) RefreshCountries(c *gin.Context) {
	res, err := s.countrySvc.Refresh(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Countries refreshed successfully",
		"total":             res.Total,
		"last_refreshed_at": res.LastRefreshedAt.Format(time.RFC3339),
	})
}

func (s *Server) ListCountries(c *gin.Context) {
	countries, err := s.countrySvc.List(c.Request.Context(), countrydomain.ListRequest{
		Region:   c.Query("region"),
		Currency: c.Query("currency"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if countries == nil {
		countries = []countrydomain.Country{}
	}
	c.JSON(http.StatusOK, countries)
}

func (s *Server) GetCountryByName(c *gin.Context) {
	country, err := s.countrySvc.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, country)
}

func (s *Server) DeleteCountryByName(c *gin.Context) {
	if err := s.countrySvc.DeleteByName(c.Request.Context(), c.Param("name")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Country deleted"})
}

func (s *Server) GetStatus(c *gin.Context) {
	status, err := s.countrySvc.Status(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetSummaryImage serves the last rendered snapshot, or 404 when no refresh
// has produced one yet.
func (s *Server) GetSummaryImage(c *gin.Context) {
	path := s.countrySvc.SummaryImagePath()
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Summary image not found"})
		return
	}

	c.Header("Content-Type", "image/png")
	c.File(path)
}
