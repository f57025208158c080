package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"easybook/config"
	"easybook/cron"
	"easybook/database"
	availabilityRepo "easybook/database/repository/availability"
	bookingRepo "easybook/database/repository/booking"
	"easybook/database/repository/memory"
	notificationRepo "easybook/database/repository/notification"
	serviceRepo "easybook/database/repository/service"
	userRepo "easybook/database/repository/user"
	"easybook/handlers"
	"easybook/routes"
	"easybook/services/analytics"
	"easybook/services/booking"
	"easybook/services/catalog"
	"easybook/services/maps"
	"easybook/services/notification"
	"easybook/services/payment"
	"easybook/services/provider"
	"easybook/services/storage"
	"easybook/services/user"
	"easybook/utils"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type repositories struct {
	users         userRepo.UserRepository
	services      serviceRepo.ServiceRepository
	bookings      bookingRepo.BookingRepository
	notifications notificationRepo.NotificationRepository
	availability  availabilityRepo.AvailabilityRepository
}

func openRepositories(logger *zap.Logger) repositories {
	if config.AppConfig.DatabaseDriver == "memory" {
		logger.Warn("Using in-memory storage; data is lost on restart")
		return repositories{
			users:         memory.NewUserRepo(),
			services:      memory.NewServiceRepo(),
			bookings:      memory.NewBookingRepo(),
			notifications: memory.NewNotificationRepo(),
			availability:  memory.NewAvailabilityRepo(),
		}
	}
	if err := database.InitDB(); err != nil {
		logger.Fatal("main: database unavailable", zap.Error(err))
	}
	return repositories{
		users:         userRepo.NewMongoUserRepo(),
		services:      serviceRepo.NewMongoServiceRepo(),
		bookings:      bookingRepo.NewMongoBookingRepo(),
		notifications: notificationRepo.NewMongoNotificationRepo(),
		availability:  availabilityRepo.NewMongoAvailabilityRepo(),
	}
}

func initFirebase(ctx context.Context, logger *zap.Logger) *firebase.App {
	app, err := utils.FirebaseInit(ctx)
	if errors.Is(err, utils.ErrFirebaseDisabled) {
		logger.Info("Firebase disabled; push and token sign-in are off")
		return nil
	}
	if err != nil {
		logger.Error("main: firebase initialization failed", zap.Error(err))
		return nil
	}
	return app
}

func paymentGateways(logger *zap.Logger) map[string]payment.Gateway {
	cfg := config.AppConfig
	gateways := map[string]payment.Gateway{}
	if cfg.StripeKey != "" {
		gateways["stripe"] = payment.NewStripeGateway(cfg.StripeKey, cfg.GatewayTimeout, cfg.GatewayRetries)
	}
	if cfg.PayPalClient != "" && cfg.PayPalSecret != "" {
		gateways["paypal"] = payment.NewPayPalGateway(cfg.PayPalClient, cfg.PayPalSecret, cfg.PayPalBaseURL, cfg.GatewayTimeout, cfg.GatewayRetries)
	}
	if len(gateways) == 0 {
		logger.Warn("No payment gateway configured")
	}
	return gateways
}

func objectStore(logger *zap.Logger) storage.ObjectStore {
	cld, err := utils.Cloudinary()
	if err != nil {
		logger.Warn("Uploads disabled", zap.Error(err))
		return nil
	}
	return storage.NewCloudinaryStore(cld)
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()
	cfg := config.AppConfig

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos := openRepositories(logger)

	if err := utils.InitCache(); err != nil {
		logger.Warn("Redis cache unavailable; caching and email codes disabled", zap.Error(err))
	}
	cacheClient := utils.GetCacheClient()

	// Notifications.
	var push notification.PushSender
	var identity user.IdentityVerifier
	if app := initFirebase(ctx, logger); app != nil {
		if sender, err := notification.NewFCMPushSender(ctx, app); err != nil {
			logger.Error("main: FCM unavailable", zap.Error(err))
		} else {
			push = sender
		}
		if verifier, err := user.NewFirebaseIdentityVerifier(ctx, app); err != nil {
			logger.Error("main: Firebase auth unavailable", zap.Error(err))
		} else {
			identity = verifier
		}
	}

	var mailer *notification.SMTPEmailSender
	var email notification.EmailSender
	if cfg.SMTPHost != "" {
		mailer = notification.NewSMTPEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
		email = mailer
	}

	notificationService, err := notification.NewDefaultNotificationService(repos.users, repos.notifications, push, email)
	if err != nil {
		logger.Fatal("main: notification service", zap.Error(err))
	}

	var dispatcher notification.Dispatcher
	var worker *cron.NotificationWorker
	var inline *notification.InlineDispatcher
	mode := cfg.NotificationMode
	queueOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisQueueDB}
	if mode == "queue" && cacheClient == nil {
		logger.Warn("Redis unavailable; delivering notifications inline")
		mode = "inline"
	}
	switch mode {
	case "queue":
		queueClient := asynq.NewClient(queueOpts)
		defer queueClient.Close()
		dispatcher = notification.NewQueueDispatcher(queueClient, 5, 30*time.Second)
		worker = cron.NewNotificationWorker(queueOpts, notificationService, 10)
		if err := worker.Start(); err != nil {
			logger.Fatal("main: notification worker", zap.Error(err))
		}
	case "disabled":
		logger.Warn("Notification delivery disabled")
	default:
		inline = notification.NewInlineDispatcher(notificationService, 30*time.Second)
		dispatcher = inline
	}
	notificationService.UseDispatcher(dispatcher)

	// Services.
	userService := user.NewDefaultUserService(repos.users, repos.bookings)
	userService.Identity = identity
	if mailer != nil {
		userService.Mailer = mailer
	}
	if cacheClient != nil {
		userService.Codes = utils.NewRedisCodeStore(cacheClient)
	}
	if cfg.JWTTTL > 0 {
		userService.TokenTTL = cfg.JWTTTL
	}

	providerService, err := provider.NewDefaultProviderService(repos.users, repos.services, repos.bookings, repos.availability)
	if err != nil {
		logger.Fatal("main: provider service", zap.Error(err))
	}
	catalogService := catalog.NewDefaultCatalogService(repos.services, repos.users)
	bookingService := booking.NewDefaultBookingService(repos.users, repos.services, repos.bookings, dispatcher)
	paymentService := payment.NewDefaultPaymentService(repos.bookings, dispatcher, paymentGateways(logger))
	mapsService := maps.NewGoogleMapsService(cfg.GoogleAPIKey, cfg.GatewayTimeout, cfg.GatewayRetries)
	storageService := storage.NewDefaultStorageService(objectStore(logger))

	analyticsCache := utils.NewJSONCache(cacheClient, "analytics:", cfg.AnalyticsCacheTTL)
	analyticsService := analytics.NewDefaultAnalyticsService(repos.users, repos.services, repos.bookings, analyticsCache)

	hb := &handlers.HandlerBundle{
		UserRepo:      repos.users,
		Auth:          handlers.NewAuthHandler(userService),
		Providers:     handlers.NewProviderHandler(providerService),
		Customers:     handlers.NewCustomerHandler(userService),
		Services:      handlers.NewServiceHandler(catalogService),
		Bookings:      handlers.NewBookingHandler(bookingService),
		Payments:      handlers.NewPaymentHandler(paymentService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Maps:          handlers.NewMapsHandler(mapsService),
		Admin:         handlers.NewAdminHandler(analyticsService, userService),
		Uploads:       handlers.NewUploadHandler(storageService),
		Health:        &handlers.HealthHandler{},
	}

	checks := map[string]utils.HealthCheck{}
	if database.MongoClient != nil {
		checks["mongo"] = func(ctx context.Context) error { return database.MongoClient.Ping(ctx, nil) }
	}
	if cacheClient != nil {
		checks["redis"] = func(ctx context.Context) error { return cacheClient.Ping(ctx).Err() }
	}
	utils.StartHealthMonitor(ctx, 30*time.Second, checks)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	routes.RegisterRoutes(router, hb)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.AppPort), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	if inline != nil {
		inline.Wait()
	}
	if err := database.Close(shutdownCtx); err != nil {
		logger.Error("Mongo disconnect failed", zap.Error(err))
	}
	logger.Info("Server exited")
}
