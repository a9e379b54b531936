package delivery

import (
	"errors"
	"log"
	"net/http"

	"pushcast-backend/internal/campaign/usecase"

	"github.com/gin-gonic/gin"
)

// CampaignHandler handles campaign management and send requests
type CampaignHandler struct {
	campaignUsecase usecase.CampaignUsecase
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(campaignUsecase usecase.CampaignUsecase) *CampaignHandler {
	return &CampaignHandler{campaignUsecase: campaignUsecase}
}

// SendRequest is the body of the send and resend endpoints
type SendRequest struct {
	CampaignID string `json:"campaignId" binding:"required"`
}

// GetCampaigns returns the owner's campaigns
// GET /api/campaigns
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	userID := c.GetString("userID")

	campaigns, err := h.campaignUsecase.GetCampaigns(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

// GetCampaign returns one campaign
// GET /api/campaigns/:id
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	userID := c.GetString("userID")

	campaign, err := h.campaignUsecase.GetCampaign(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// CreateCampaign stores a draft or scheduled campaign
// POST /api/campaigns
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	userID := c.GetString("userID")

	var req usecase.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign, err := h.campaignUsecase.CreateCampaign(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "campaign": campaign})
}

// DeleteCampaign removes a campaign
// DELETE /api/campaigns/:id
func (h *CampaignHandler) DeleteCampaign(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.campaignUsecase.DeleteCampaign(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SendCampaign delivers a campaign now
// POST /api/campaigns/send
func (h *CampaignHandler) SendCampaign(c *gin.Context) {
	userID := c.GetString("userID")

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campaignId is required"})
		return
	}

	summary, err := h.campaignUsecase.SendCampaign(c.Request.Context(), userID, req.CampaignID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "results": summary})
}

// ResendCampaign delivers a finished campaign again
// POST /api/campaigns/resend
func (h *CampaignHandler) ResendCampaign(c *gin.Context) {
	userID := c.GetString("userID")

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campaignId is required"})
		return
	}

	summary, err := h.campaignUsecase.ResendCampaign(c.Request.Context(), userID, req.CampaignID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "results": summary})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrCampaignNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
	case errors.Is(err, usecase.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	case errors.Is(err, usecase.ErrInvalidCampaign):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrCampaignBusy), errors.Is(err, usecase.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[Campaign] Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
