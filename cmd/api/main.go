package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chachabrian/tourhub-backend/internal/config"
	"github.com/chachabrian/tourhub-backend/internal/database"
	"github.com/chachabrian/tourhub-backend/internal/handlers"
	"github.com/chachabrian/tourhub-backend/internal/middleware"
	"github.com/chachabrian/tourhub-backend/internal/repository"
	"github.com/chachabrian/tourhub-backend/internal/services"
	"github.com/chachabrian/tourhub-backend/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg.Log)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg.DB, cfg.Log.Level)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	pool, err := database.NewPool(ctx, cfg.DB.URL(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect pgx pool")
	}
	defer pool.Close()

	pingers := map[string]handlers.Pinger{"postgres": pool}

	var sessions services.SessionStore = services.NoopSessionStore{}
	var limiter middleware.RateLimiter
	if cfg.Redis.URL != "" {
		client, err := services.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis")
		}
		defer client.Close()
		sessions = services.NewRedisSessionStore(client)
		limiter = services.NewRedisRateLimiter(client, time.Minute)
		pingers["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	} else {
		log.Warn().Msg("REDIS_URL not set: sessions are stateless and rate limiting is off")
	}

	storage, err := services.NewStorage(cfg.Storage, cfg.Server.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	done := make(chan struct{})
	defer close(done)
	hub := services.NewHub()
	go hub.Run(done)

	var gateway services.PaymentGateway
	switch cfg.Payment.Provider {
	case config.PaymentProviderStripe:
		gateway = services.NewStripeGateway(cfg.Payment.StripeSecretKey, cfg.Payment.Currency)
	default:
		gateway = services.NewSimulatedGateway(cfg.Payment.FailureRate, nil)
	}

	mailer := utils.NewMailer(utils.MailerConfig{
		From:        cfg.Email.From,
		Password:    cfg.Email.Password,
		SMTPHost:    cfg.Email.SMTPHost,
		SMTPPort:    cfg.Email.SMTPPort,
		CompanyName: cfg.Email.CompanyName,
		BaseURL:     cfg.Server.BaseURL,
	})
	tokens := utils.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	userRepo := repository.NewUserRepository(db)
	tourRepo := repository.NewTourRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	audit := services.NewAuditService(repository.NewLogRepository(db))
	settings := services.NewSettingsService(repository.NewSettingRepository(db))
	notifications := services.NewNotificationService(repository.NewNotificationRepository(db), hub, settings)
	authService := services.NewAuthService(userRepo, repository.NewOTPRepository(db), sessions, tokens, mailer, services.AuthConfig{
		BcryptCost:    cfg.Auth.BcryptCost,
		OTPExpiration: cfg.Auth.OTPExpiration,
	})
	users := services.NewUserService(userRepo, audit, cfg.Auth.BcryptCost)
	tours := services.NewTourService(tourRepo, reviewRepo, storage, notifications, audit)
	coupons := services.NewCouponService(repository.NewCouponRepository(db), audit)
	bookings := services.NewBookingService(bookingRepo, tourRepo, gateway, notifications, audit, mailer)
	checkout := services.NewCheckoutService(services.CheckoutDeps{
		Store:    bookingRepo,
		Tours:    tourRepo,
		Users:    userRepo,
		Coupons:  coupons,
		Gateway:  gateway,
		Notifier: notifications,
		System:   audit,
		Mailer:   mailer,
		Currency: cfg.Payment.Currency,
	})
	reviews := services.NewReviewService(reviewRepo, tourRepo, bookingRepo, notifications, audit)
	wishlist := services.NewWishlistService(repository.NewWishlistRepository(db), tourRepo)
	dashboard := services.NewDashboardService(repository.NewDashboardRepository(pool))

	handlers.RegisterValidators()
	cookie := handlers.NewSessionCookie(cfg.Auth)
	requireAuth := middleware.Auth(authService, cfg.Auth.CookieName)
	optionalAuth := middleware.OptionalAuth(authService, cfg.Auth.CookieName)

	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = true
	if len(cfg.Server.CORSOrigins) == 1 && cfg.Server.CORSOrigins[0] == "*" {
		// Credentials cannot be combined with a wildcard origin.
		corsConfig.AllowOrigins = nil
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	r.Use(cors.New(corsConfig))
	r.Use(middleware.RequestLogger())
	r.Use(middleware.RateLimit(limiter, cfg.Server.RateLimitPerMinute))

	r.Static("/uploads", storage.UploadDir())
	r.GET("/health", handlers.Health(pingers))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(authService, cookie))
			auth.POST("/login", handlers.Login(authService, cookie))
			auth.POST("/logout", optionalAuth, handlers.Logout(authService, cookie))
			auth.GET("/session", requireAuth, handlers.GetSession(authService))
			auth.POST("/forgot-password", handlers.RequestPasswordReset(authService))
			auth.POST("/reset-password", handlers.ResetPassword(authService))
		}

		api.GET("/settings/public", handlers.GetPublicSettings(settings))

		publicTours := api.Group("/tours")
		publicTours.Use(optionalAuth)
		{
			publicTours.GET("", handlers.ListTours(tours))
			publicTours.GET("/:id", handlers.GetTour(tours))
		}

		api.GET("/reviews", optionalAuth, handlers.GetReviews(reviews))

		protected := api.Group("/")
		protected.Use(requireAuth)
		{
			profile := protected.Group("/profile")
			{
				profile.GET("", handlers.GetProfile(users))
				profile.PUT("", handlers.UpdateProfile(users))
				profile.PUT("/password", handlers.ChangePassword(users))
			}

			protected.POST("/tours/create", handlers.SubmitTour(tours))
			protected.GET("/tours/my-tours", handlers.GetMyTours(tours))

			cart := protected.Group("/checkout")
			{
				cart.POST("", handlers.Checkout(checkout))
				cart.POST("/create-payment-intent", handlers.CreatePaymentIntent(checkout))
				cart.POST("/apply-coupon", handlers.ApplyCoupon(coupons))
			}

			userBookings := protected.Group("/bookings")
			{
				userBookings.GET("", handlers.GetBookings(bookings))
				userBookings.POST("", handlers.CreateBooking(bookings))
				userBookings.GET("/:id", handlers.GetBooking(bookings))
				userBookings.PATCH("/:id", handlers.UpdateBooking(bookings))
				userBookings.PATCH("/:id/cancel", handlers.CancelBooking(bookings))
				userBookings.DELETE("/:id", handlers.CancelBooking(bookings))
			}

			protected.POST("/reviews", handlers.CreateReview(reviews))
			protected.DELETE("/reviews/:id", handlers.DeleteReview(reviews))

			saved := protected.Group("/wishlist")
			{
				saved.GET("", handlers.GetWishlist(wishlist))
				saved.POST("", handlers.AddToWishlist(wishlist))
				saved.DELETE("", handlers.RemoveFromWishlist(wishlist))
				saved.DELETE("/:tourId", handlers.RemoveFromWishlist(wishlist))
			}

			protected.GET("/notifications", handlers.GetMyNotifications(notifications))
			protected.PATCH("/notifications/:id/read", handlers.MarkMyNotificationRead(notifications))
		}

		admin := api.Group("/admin")
		admin.Use(requireAuth, middleware.RequireAdmin())
		{
			admin.GET("/ws", handlers.WebSocketHandler(hub))
			admin.GET("/dashboard", handlers.AdminDashboard(dashboard))

			adminTours := admin.Group("/tours")
			{
				adminTours.GET("", handlers.AdminListTours(tours))
				adminTours.POST("", handlers.AdminCreateTour(tours))
				adminTours.GET("/pending", handlers.AdminPendingTours(tours))
				adminTours.PUT("/:id", handlers.AdminUpdateTour(tours))
				adminTours.DELETE("/:id", handlers.AdminDeleteTour(tours))
				adminTours.PATCH("/:id/approve", handlers.AdminModerateTour(tours))
				adminTours.POST("/:id/images", handlers.AdminUploadTourImage(tours))
			}

			adminBookings := admin.Group("/bookings")
			{
				adminBookings.GET("", handlers.AdminListBookings(bookings))
				adminBookings.GET("/:id", handlers.AdminGetBooking(bookings))
				adminBookings.PATCH("/:id/status", handlers.AdminUpdateBookingStatus(bookings))
			}

			payments := admin.Group("/payments")
			{
				payments.GET("", handlers.AdminListPayments(bookings))
				payments.POST("/sync", handlers.AdminSyncPayments(bookings))
				payments.POST("/:id/refund", handlers.AdminRefundPayment(bookings))
			}

			adminReviews := admin.Group("/reviews")
			{
				adminReviews.GET("", handlers.AdminListReviews(reviews))
				adminReviews.PATCH("/:id/status", handlers.AdminUpdateReviewStatus(reviews))
				adminReviews.DELETE("/:id", handlers.DeleteReview(reviews))
			}

			adminCoupons := admin.Group("/coupons")
			{
				adminCoupons.GET("", handlers.AdminListCoupons(coupons))
				adminCoupons.POST("", handlers.AdminCreateCoupon(coupons))
				adminCoupons.PUT("/:id", handlers.AdminUpdateCoupon(coupons))
				adminCoupons.DELETE("/:id", handlers.AdminDeleteCoupon(coupons))
				adminCoupons.PATCH("/:id/toggle", handlers.AdminToggleCoupon(coupons))
				adminCoupons.GET("/:id/usage", handlers.AdminCouponUsage(coupons))
			}

			adminUsers := admin.Group("/users")
			{
				adminUsers.GET("", handlers.AdminListUsers(users))
				adminUsers.POST("", handlers.AdminCreateUser(users))
				adminUsers.GET("/:id", handlers.AdminGetUser(users))
				adminUsers.PATCH("/:id/role", handlers.AdminUpdateUserRole(users))
				adminUsers.PATCH("/:id/status", handlers.AdminUpdateUserStatus(users))
				adminUsers.DELETE("/:id", handlers.AdminDeleteUser(users))
			}

			alerts := admin.Group("/notifications")
			{
				alerts.GET("", handlers.AdminListNotifications(notifications))
				alerts.PATCH("/:id/read", handlers.AdminMarkNotificationRead(notifications))
				alerts.POST("/mark-all-read", handlers.AdminMarkAllNotificationsRead(notifications))
				alerts.DELETE("/clear-all", handlers.AdminClearNotifications(notifications))
				alerts.DELETE("/:id", handlers.AdminDeleteNotification(notifications))
			}

			admin.GET("/settings", handlers.AdminGetSettings(settings))
			admin.POST("/settings", handlers.AdminUpdateSettings(settings, audit))
			admin.GET("/logs", handlers.AdminListLogs(audit))
			admin.GET("/system-logs", handlers.AdminListSystemLogs(audit))
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Bool("s3", storage.UsingS3()).Str("payments", cfg.Payment.Provider).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
