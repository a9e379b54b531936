package delivery

import (
	"errors"
	"log"
	"net/http"

	"pushcast-backend/internal/audience/usecase"

	"github.com/gin-gonic/gin"
)

// AudienceHandler serves site management, subscriber listing and the public
// subscribe endpoint.
type AudienceHandler struct {
	audienceUsecase usecase.AudienceUsecase
}

// NewAudienceHandler creates a new AudienceHandler
func NewAudienceHandler(audienceUsecase usecase.AudienceUsecase) *AudienceHandler {
	return &AudienceHandler{audienceUsecase: audienceUsecase}
}

// CreateSite registers a hostname for the authenticated owner
// POST /api/domains
func (h *AudienceHandler) CreateSite(c *gin.Context) {
	userID := c.GetString("userID")

	var req usecase.RegisterSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	site, err := h.audienceUsecase.RegisterSite(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, site)
}

// GetSites lists the owner's sites with subscriber counts
// GET /api/domains
func (h *AudienceHandler) GetSites(c *gin.Context) {
	userID := c.GetString("userID")

	sites, err := h.audienceUsecase.ListSites(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sites)
}

// DeleteSite removes a site and its tokens
// DELETE /api/domains/:id
func (h *AudienceHandler) DeleteSite(c *gin.Context) {
	userID := c.GetString("userID")

	removed, err := h.audienceUsecase.DeleteSite(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deletedTokens": removed})
}

// GetTokens lists subscribers of the owner's sites
// GET /api/tokens?domainId=&platform=
func (h *AudienceHandler) GetTokens(c *gin.Context) {
	userID := c.GetString("userID")

	tokens, err := h.audienceUsecase.ListTokens(c.Request.Context(), userID, c.Query("domainId"), c.Query("platform"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens, "total": len(tokens)})
}

// Subscribe records a token sent by an embedded loader
// POST /api/subscribe
func (h *AudienceHandler) Subscribe(c *gin.Context) {
	var req usecase.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req.IP = c.ClientIP()
	req.Origin = c.GetHeader("Origin")
	if req.Origin == "" {
		req.Origin = c.GetHeader("Referer")
	}

	if _, err := h.audienceUsecase.Subscribe(c.Request.Context(), req); err != nil {
		switch {
		case errors.Is(err, usecase.ErrSiteNotFound):
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid Domain ID"})
		case errors.Is(err, usecase.ErrOriginMismatch):
			c.JSON(http.StatusForbidden, gin.H{"error": "Origin not allowed for this domain"})
		default:
			writeError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrSiteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
	case errors.Is(err, usecase.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	case errors.Is(err, usecase.ErrSiteExists), errors.Is(err, usecase.ErrInvalidSite), errors.Is(err, usecase.ErrMissingToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[Audience] Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
