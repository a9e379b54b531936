package api

import (
	"net/http"

	analyticsDelivery "pushcast-backend/internal/analytics/delivery"
	audienceDelivery "pushcast-backend/internal/audience/delivery"
	"pushcast-backend/internal/auth/delivery"
	authUsecase "pushcast-backend/internal/auth/usecase"
	campaignDelivery "pushcast-backend/internal/campaign/delivery"
	"pushcast-backend/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes groups every handler the router mounts
type Routes struct {
	Verifier         authUsecase.TokenVerifier
	SubscribeLimiter ratelimit.Limiter
	Audience         *audienceDelivery.AudienceHandler
	Campaigns        *campaignDelivery.CampaignHandler
	Track            *campaignDelivery.TrackHandler
	Cron             *campaignDelivery.CronHandler
	Analytics        *analyticsDelivery.AnalyticsHandler
}

func SetupRoutes(r *gin.Engine, routes Routes) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Loader and service worker endpoints (public)
		if routes.SubscribeLimiter != nil {
			api.POST("/subscribe", ratelimit.Middleware(routes.SubscribeLimiter, "subscribe"), routes.Audience.Subscribe)
		} else {
			api.POST("/subscribe", routes.Audience.Subscribe)
		}
		api.GET("/track-click", routes.Track.TrackClick)
		api.OPTIONS("/track-click", routes.Track.Preflight)
		api.POST("/track-click", routes.Track.TrackClickLegacy)

		// Cron trigger, bearer secret checked by the handler
		api.GET("/cron/process-scheduled", routes.Cron.ProcessScheduled)

		// Domain routes (protected)
		domains := api.Group("/domains")
		domains.Use(delivery.AuthMiddleware(routes.Verifier))
		{
			domains.GET("", routes.Audience.GetSites)
			domains.POST("", routes.Audience.CreateSite)
			domains.DELETE("/:id", routes.Audience.DeleteSite)
		}

		api.GET("/tokens", delivery.AuthMiddleware(routes.Verifier), routes.Audience.GetTokens)

		// Campaign routes (protected)
		campaigns := api.Group("/campaigns")
		campaigns.Use(delivery.AuthMiddleware(routes.Verifier))
		{
			campaigns.GET("", routes.Campaigns.GetCampaigns)
			campaigns.POST("", routes.Campaigns.CreateCampaign)
			campaigns.GET("/:id", routes.Campaigns.GetCampaign)
			campaigns.DELETE("/:id", routes.Campaigns.DeleteCampaign)
			campaigns.POST("/send", routes.Campaigns.SendCampaign)
			campaigns.POST("/resend", routes.Campaigns.ResendCampaign)
		}

		// Analytics routes (protected)
		analytics := api.Group("/analytics")
		analytics.Use(delivery.AuthMiddleware(routes.Verifier))
		{
			analytics.GET("/overview", routes.Analytics.GetOverview)
			analytics.GET("/history", routes.Analytics.GetHistory)
		}
	}
}
