package main

import (
	"context"
	"log"
	"strings"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"

	api "pushcast-backend/cmd/api"
	analyticsDelivery "pushcast-backend/internal/analytics/delivery"
	analyticsRepo "pushcast-backend/internal/analytics/repository"
	analyticsUsecase "pushcast-backend/internal/analytics/usecase"
	audienceDelivery "pushcast-backend/internal/audience/delivery"
	audiencedomain "pushcast-backend/internal/audience/domain"
	audienceRepo "pushcast-backend/internal/audience/repository"
	audienceUsecase "pushcast-backend/internal/audience/usecase"
	authUsecase "pushcast-backend/internal/auth/usecase"
	campaignDelivery "pushcast-backend/internal/campaign/delivery"
	campaigndomain "pushcast-backend/internal/campaign/domain"
	campaignRepo "pushcast-backend/internal/campaign/repository"
	"pushcast-backend/internal/campaign/scheduler"
	campaignUsecase "pushcast-backend/internal/campaign/usecase"
	"pushcast-backend/pkg/config"
	"pushcast-backend/pkg/database"
	"pushcast-backend/pkg/fcm"
	"pushcast-backend/pkg/push"
	"pushcast-backend/pkg/ratelimit"
	"pushcast-backend/pkg/webpush"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&audiencedomain.Site{}, &audiencedomain.Token{}, &campaigndomain.Campaign{}, &campaigndomain.GlobalStats{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Firebase app backs FCM delivery and ID-token verification
	var firebaseApp *firebase.App
	if cfg.PushProvider == "fcm" || cfg.AuthProvider == "firebase" {
		firebaseApp, err = fcm.NewApp(ctx, cfg.FirebaseCredentials, cfg.FirebaseProjectID)
		if err != nil {
			log.Fatal("Failed to initialize Firebase:", err)
		}
	}

	gateway, err := newGateway(ctx, cfg, firebaseApp)
	if err != nil {
		log.Fatal("Failed to initialize push gateway:", err)
	}
	verifier, err := newVerifier(ctx, cfg, firebaseApp)
	if err != nil {
		log.Fatal("Failed to initialize auth verifier:", err)
	}
	subscribeLimiter, trackLimiter := newLimiters(cfg)

	// Initialize repositories (dependency injection)
	siteRepo := audienceRepo.NewSiteRepository(db)
	tokenRepo := audienceRepo.NewTokenRepository(db)
	campaignRepository := campaignRepo.NewCampaignRepository(db)
	statsRepo := campaignRepo.NewStatsRepository(db)
	analyticsRepository := analyticsRepo.NewAnalyticsRepository(db)

	// Delivery pipeline
	pipeline := campaignUsecase.NewPipeline(
		campaignRepository,
		campaignUsecase.NewResolver(siteRepo, tokenRepo),
		campaignUsecase.NewDispatcher(gateway, cfg.AppBaseURL, cfg.DispatchBatchSize),
		campaignUsecase.NewReaper(tokenRepo),
		campaignUsecase.NewReconciler(statsRepo),
	)

	// Initialize use cases (dependency injection)
	audienceUc := audienceUsecase.NewAudienceUsecase(siteRepo, tokenRepo)
	campaignUc := campaignUsecase.NewCampaignUsecase(campaignRepository, siteRepo, pipeline)
	analyticsUc := analyticsUsecase.NewAnalyticsUsecase(analyticsRepository, statsRepo)
	tracker := campaignUsecase.NewClickTracker(statsRepo, trackLimiter, cfg.DefaultRedirectURL)

	// Scheduler: in-process ticker, cron endpoint and optional Pub/Sub trigger
	campaignScheduler := scheduler.NewCampaignScheduler(campaignRepository, pipeline, cfg.SchedulerInterval)
	campaignScheduler.Start()
	defer campaignScheduler.Stop()

	if cfg.GoogleProjectID != "" && cfg.SchedulerPubSubSubscription != "" {
		subscription := cfg.SchedulerPubSubSubscription
		if parts := strings.Split(subscription, "/"); len(parts) > 1 {
			subscription = parts[len(parts)-1]
		}
		trigger, err := scheduler.NewPubSubTrigger(ctx, cfg.GoogleProjectID, subscription, cfg.GoogleCredentials, campaignScheduler)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize Pub/Sub trigger: %v", err)
		} else {
			go trigger.Start(ctx)
			defer trigger.Close()
		}
	} else {
		log.Printf("[WARN] Pub/Sub trigger not configured, scheduler runs by ticker and cron only")
	}

	// Initialize HTTP handler
	handler := api.NewHandler(api.Routes{
		Verifier:         verifier,
		SubscribeLimiter: subscribeLimiter,
		Audience:         audienceDelivery.NewAudienceHandler(audienceUc),
		Campaigns:        campaignDelivery.NewCampaignHandler(campaignUc),
		Track:            campaignDelivery.NewTrackHandler(tracker),
		Cron:             campaignDelivery.NewCronHandler(campaignScheduler, cfg.CronSecret),
		Analytics:        analyticsDelivery.NewAnalyticsHandler(analyticsUc),
	})

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func newGateway(ctx context.Context, cfg *config.Config, app *firebase.App) (push.Gateway, error) {
	if cfg.PushProvider == "webpush" {
		log.Println("[Push] Using VAPID web push")
		return webpush.NewClient(cfg.VapidSubscriber, cfg.VapidPublicKey, cfg.VapidPrivateKey), nil
	}
	return fcm.NewClient(ctx, app)
}

func newVerifier(ctx context.Context, cfg *config.Config, app *firebase.App) (authUsecase.TokenVerifier, error) {
	if cfg.AuthProvider == "jwt" {
		log.Println("[Auth] Using HS256 JWT verification")
		return authUsecase.NewJWTVerifier(cfg.JWTSecret), nil
	}
	return authUsecase.NewFirebaseVerifier(ctx, app)
}

// newLimiters shares counters through Redis when REDIS_ADDR is set and falls
// back to per-process limiters otherwise.
func newLimiters(cfg *config.Config) (subscribe, track ratelimit.Limiter) {
	if cfg.RedisAddr == "" {
		log.Println("[RateLimit] REDIS_ADDR not set, using in-memory limiters")
		return ratelimit.NewMemoryLimiter(cfg.SubscribeRateLimit, cfg.SubscribeRateWindow),
			ratelimit.NewMemoryLimiter(cfg.TrackRateLimit, cfg.TrackRateWindow)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return ratelimit.NewRedisLimiter(client, "subscribe", cfg.SubscribeRateLimit, cfg.SubscribeRateWindow),
		ratelimit.NewRedisLimiter(client, "track", cfg.TrackRateLimit, cfg.TrackRateWindow)
}
