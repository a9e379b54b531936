package delivery

import (
	"errors"
	"net/http"

	"pushcast-backend/internal/campaign/usecase"

	"github.com/gin-gonic/gin"
)

// TrackHandler serves the click redirect embedded in delivered notifications
type TrackHandler struct {
	tracker *usecase.ClickTracker
}

func NewTrackHandler(tracker *usecase.ClickTracker) *TrackHandler {
	return &TrackHandler{tracker: tracker}
}

// TrackClick counts a click and redirects
// GET /api/track-click?campaignId=&targetUrl=
func (h *TrackHandler) TrackClick(c *gin.Context) {
	redirect := h.tracker.Track(c.Request.Context(), c.Query("campaignId"), c.Query("targetUrl"), c.ClientIP())

	setTrackCORS(c)
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Redirect(http.StatusTemporaryRedirect, redirect)
}

// Preflight answers CORS preflight for the tracker
// OPTIONS /api/track-click
func (h *TrackHandler) Preflight(c *gin.Context) {
	setTrackCORS(c)
	c.Status(http.StatusNoContent)
}

type legacyClickRequest struct {
	CampaignID string `json:"campaignId"`
}

// TrackClickLegacy counts a click posted by older service workers
// POST /api/track-click
func (h *TrackHandler) TrackClickLegacy(c *gin.Context) {
	var req legacyClickRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CampaignID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Campaign ID required"})
		return
	}

	if err := h.tracker.TrackLegacy(c.Request.Context(), req.CampaignID); err != nil {
		if errors.Is(err, usecase.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func setTrackCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
}
