package delivery

import (
	"log"
	"net/http"

	"pushcast-backend/internal/analytics/usecase"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves dashboard statistics
type AnalyticsHandler struct {
	analyticsUsecase usecase.AnalyticsUsecase
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsUsecase usecase.AnalyticsUsecase) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsUsecase: analyticsUsecase}
}

// GetOverview returns headline counters
// GET /api/analytics/overview
func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
	overview, err := h.analyticsUsecase.Overview(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		log.Printf("[Analytics] Overview failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, overview)
}

// GetHistory returns the last days of activity
// GET /api/analytics/history
func (h *AnalyticsHandler) GetHistory(c *gin.Context) {
	history, err := h.analyticsUsecase.History(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		log.Printf("[Analytics] History failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, history)
}
