package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/config"
	availabilityRepo "marketplace/database/repository/availability"
	"marketplace/cron"
	"marketplace/handlers"
	"marketplace/middleware"
	"marketplace/routes"
	"marketplace/services/availability"
	"marketplace/services/booking"
	"marketplace/services/catalog"
	"marketplace/services/notification"
	"marketplace/services/payment"
	"marketplace/services/provider"
	"marketplace/services/reliability"
	"marketplace/services/review"
	"marketplace/services/subscription"
	"marketplace/services/tasks"
	"marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadConfig(); err != nil {
		utils.GetLogger().Fatal("main: invalid configuration", zap.Error(err))
	}
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := utils.NewMetrics(prometheus.DefaultRegisterer)

	repos, err := openRepositories(logger)
	if err != nil {
		logger.Fatal("main: failed to open store", zap.Error(err))
	}

	if err := utils.InitCache(); err != nil {
		logger.Warn("main: redis cache unavailable, availability reads go to the store", zap.Error(err))
	}
	cache := utils.GetCacheClient()
	var availRepo availabilityRepo.AvailabilityRepository = repos.Availability
	if cache != nil {
		availRepo = availabilityRepo.NewCachedAvailabilityRepo(repos.Availability, cache, config.AppConfig.AvailabilityCacheTTL, logger)
	}

	// push delivery
	var pusher notification.Pusher = notification.NoopPusher{}
	var worker *cron.PushWorker
	if config.AppConfig.PushEnabled {
		fcm, err := utils.NewFCMClient(ctx, config.AppConfig.FirebaseCredentialsFile)
		if err != nil {
			logger.Fatal("main: failed to initialize firebase messaging", zap.Error(err))
		}
		queue := asynq.NewClient(cron.RedisOpt())
		defer queue.Close()
		pusher = &tasks.QueuePusher{Client: queue}

		delivery := &notification.FCMDelivery{Sender: fcm, Users: repos.Users, Providers: repos.Providers, Logger: logger}
		worker = cron.NewPushWorker(cron.RedisOpt(), delivery, logger, metrics)
		if err := worker.Start(ctx); err != nil {
			logger.Fatal("main: push worker did not start", zap.Error(err))
		}
		defer worker.Shutdown()
	}

	// services
	notificationService, err := notification.NewDefaultNotificationService(repos.Notifications, pusher, logger, metrics)
	if err != nil {
		logger.Fatal("main", zap.Error(err))
	}
	availabilityService := availability.NewAvailabilityService(availRepo, config.AppConfig.SlotStep(), logger)
	reliabilityEngine := reliability.NewEngine(repos.Providers, logger, metrics)
	reviewService := review.NewReviewService(repos.Reviews, repos.Bookings, repos.Providers, repos.Tx, logger)

	providerService, err := provider.NewDefaultProviderService(repos.Providers, repos.Users, availRepo, notificationService, repos.Tx, logger)
	if err != nil {
		logger.Fatal("main", zap.Error(err))
	}
	catalogService, err := catalog.NewCatalogService(repos.Catalog, repos.Providers, logger)
	if err != nil {
		logger.Fatal("main", zap.Error(err))
	}
	payments := payment.NewPaymentHandler(logger)
	subscriptionService, err := subscription.NewSubscriptionService(repos.Subscriptions, repos.Users, payments, repos.Tx, logger)
	if err != nil {
		logger.Fatal("main", zap.Error(err))
	}
	subscriptionService.Plan = subscription.Plan{Fee: config.AppConfig.SubscriptionFee, Currency: config.AppConfig.Currency}

	bookingService, err := booking.NewBookingService(
		repos.Bookings, repos.Providers, repos.Users,
		availabilityService, reliabilityEngine, notificationService,
		payments, repos.Tx, logger, metrics,
	)
	if err != nil {
		logger.Fatal("main", zap.Error(err))
	}
	bookingService.Catalog = catalogService
	bookingService.Subscriptions = subscriptionService
	bookingService.Policy = booking.Policy{
		BookingFee:          config.AppConfig.BookingFee,
		RefundAmount:        config.AppConfig.BookingFee,
		Currency:            config.AppConfig.Currency,
		RequireSubscription: config.AppConfig.RequireSubscription,
	}

	monitor := utils.NewHealthMonitor(config.AppConfig.StoreDriver, cache, repos.Mongo)
	monitor.Start(ctx, 15*time.Second)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(metrics.GinMiddleware())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	router.Use(middleware.RequestTimeout(config.AppConfig.RequestTimeout))
	router.GET(config.AppConfig.MetricsPath, gin.WrapH(promhttp.Handler()))

	routes.RegisterRoutes(router, &handlers.HandlerBundle{
		Bookings:      handlers.NewBookingHandler(bookingService, reviewService),
		Providers:     handlers.NewProviderHandler(providerService, availabilityService, reliabilityEngine, reviewService),
		Catalog:       handlers.NewCatalogHandler(catalogService),
		Subscriptions: handlers.NewSubscriptionHandler(subscriptionService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Admin:         handlers.NewAdminHandler(bookingService, providerService, reliabilityEngine),
		Health:        monitor,
		JWTSecret:     []byte(config.AppConfig.JWTSecret),
		AdminToken:    config.AppConfig.AdminToken,
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + config.AppConfig.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("store", config.AppConfig.StoreDriver))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	logger.Info("main: server stopped gracefully")
}
