package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/railserve/reservation-backend/internal/config"
	"github.com/railserve/reservation-backend/internal/database"
	"github.com/railserve/reservation-backend/internal/fare"
	"github.com/railserve/reservation-backend/internal/handlers"
	"github.com/railserve/reservation-backend/internal/inventory"
	"github.com/railserve/reservation-backend/internal/middleware"
	"github.com/railserve/reservation-backend/internal/services"
	"github.com/railserve/reservation-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting RailServe Reservation Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize Redis for seat holds
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Fatalf("Failed to connect to redis: %v", err)
	}
	cancelPing()
	logger.Info("Redis connection established")

	// Initialize repositories
	trainRepository := database.NewTrainRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	ticketRepository := database.NewTicketRepository(db)
	cancellationRepository := database.NewCancellationRepository(db)
	userRepository := database.NewUserRepository(db)
	ticketStore := database.NewTicketStore(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	scheduleService, err := services.NewScheduleService(trainRepository, cfg.Booking)
	if err != nil {
		logger.Fatalf("Failed to initialize schedule service: %v", err)
	}

	coordinator := inventory.NewCoordinator(
		ticketStore,
		trainRepository,
		scheduleService,
		fare.DefaultCancellationPolicy(),
		logger,
	)

	holdService := services.NewHoldService(redisClient, cfg.Booking.HoldTTL, logger)
	bookingService := services.NewBookingService(
		trainRepository,
		bookingRepository,
		ticketRepository,
		cancellationRepository,
		scheduleService,
		coordinator,
		holdService,
		logger,
	)
	authService := services.NewAuthService(userRepository, jwtService, logger)

	// Initialize and start cron service
	cronService := services.NewCronService(bookingRepository, cfg.Booking)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	trainHandler := handlers.NewTrainHandler(trainRepository, bookingService)
	holdHandler := handlers.NewHoldHandler(holdService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh-token", authHandler.RefreshToken)
			auth.POST("/refresh", authHandler.RefreshToken) // Alias for client compatibility
		}

		// Train routes (public reads)
		trains := v1.Group("/trains")
		{
			trains.GET("/:trainNumber", trainHandler.GetTrain)
			trains.GET("/:trainNumber/availability", trainHandler.Availability)
		}

		// Fare quoting (public)
		v1.POST("/fare/quote", bookingHandler.QuoteFare)

		// PNR enquiry (public)
		v1.GET("/bookings/pnr/:pnr", bookingHandler.PNRStatus)

		// Booking routes (agents only)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole("agent", "supervisor"))
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.BookingsByMobile)
		}

		// Ticket routes
		tickets := v1.Group("/tickets")
		{
			tickets.GET("/:ticketId", bookingHandler.TicketStatus)

			ticketsProtected := tickets.Group("")
			ticketsProtected.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole("agent", "supervisor"))
			{
				ticketsProtected.DELETE("/:ticketId", bookingHandler.CancelTicket)
			}
		}

		// Seat hold routes (agents only)
		holds := v1.Group("/holds")
		holds.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole("agent", "supervisor"))
		{
			holds.POST("", holdHandler.CreateHold)
			holds.DELETE("/:token", holdHandler.ReleaseHold)
		}

		// Admin cron management routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole("admin"))
		{
			admin.POST("/cron/purge-old-journeys", func(c *gin.Context) {
				if err := cronService.RunPurgeNow(); err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
					return
				}
				c.JSON(http.StatusOK, gin.H{"message": "Purge triggered"})
			})

			admin.GET("/cron/status", func(c *gin.Context) {
				c.JSON(http.StatusOK, cronService.GetJobStatus())
			})
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	cronService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["username"] = userCtx.Username
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
		} else {
			status := c.Writer.Status()
			if status >= 500 {
				entry.Error("Request completed with server error")
			} else if status >= 400 {
				entry.Warn("Request completed with client error")
			} else {
				entry.Info("Request completed successfully")
			}
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
