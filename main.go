package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-service/controllers"
	"catalog-service/database"
	"catalog-service/middleware"
	"catalog-service/models"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/pkg/apperrors"
	"catalog-service/pkg/logger"
	"catalog-service/repository"
	"catalog-service/routes"
	servicepkg "catalog-service/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const serviceName = "catalog-service"

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	// AWS is optional; every client below degrades to a no-op without it.
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(ctx)

	var logShipper io.Writer
	if awsErr == nil && os.Getenv("CLOUDWATCH_ENABLED") == "true" {
		if w, err := aws_pkg.NewCloudWatchLogsWriter(ctx, awsCfg, serviceName); err == nil {
			logShipper = w
		} else {
			log.Printf("CloudWatch Logs unavailable: %v", err)
		}
	}

	zapLogger, err := logger.New(os.Getenv("APP_ENV"), logShipper)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(zapLogger)

	cfg, err := LoadConfig()
	if err != nil {
		zapLogger.Fatal("Failed to load config", zap.Error(err))
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.ConnectPostgres(cfg.Postgres, zapLogger, models.Tables...)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		zapLogger.Warn("Redis unavailable, response cache disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	var (
		snsClient     aws_pkg.SNSPublisher
		sqsClient     aws_pkg.SQSSender
		metricsClient aws_pkg.MetricsRecorder
		photoStorage  servicepkg.PhotoStorage
	)
	if awsErr != nil {
		zapLogger.Warn("AWS config unavailable, events and metrics disabled", zap.Error(awsErr))
	} else {
		snsClient = aws_pkg.NewSNSClient(awsCfg)
		sqsClient = aws_pkg.NewSQSClient(awsCfg)
		metricsClient = aws_pkg.NewMetricsClient(awsCfg)
	}

	switch cfg.PhotoStorage {
	case "s3":
		if awsErr != nil {
			zapLogger.Fatal("PHOTO_STORAGE=s3 requires AWS config", zap.Error(awsErr))
		}
		photoStorage = servicepkg.NewS3PhotoStorage(aws_pkg.NewS3Client(awsCfg), cfg.PhotoS3Bucket)
	default:
		photoStorage = servicepkg.NewLocalPhotoStorage(cfg.PhotoRoot, zapLogger)
	}

	events := servicepkg.NewEventPublisher(snsClient, cfg.CatalogSNSTopicARN, sqsClient, cfg.CatalogEventsQueueURL, zapLogger)
	catalogService := servicepkg.NewCatalogService(photoStorage, events, metricsClient, zapLogger)
	cache := controllers.NewCacheManager(redisClient, cfg.CacheTTL, metricsClient)
	catalogController := controllers.NewCatalogController(catalogService, cache)
	controllers.RegisterValidation()

	limiter := middleware.NewRateLimiter(rate.Limit(float64(cfg.RateLimitPerMinute)/60), cfg.RateLimitBurst, 3*time.Minute)
	stopLimiter := make(chan struct{})
	go limiter.Run(stopLimiter)
	defer close(stopLimiter)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(zapLogger))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimit(limiter))
	r.Use(middleware.Metrics(metricsClient, serviceName))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(apperrors.ErrorMiddleware(zapLogger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
	})

	routes.RegisterCatalogRoutes(r, cfg.RoutePrefix, catalogController, unitOfWorkFactory(db))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	zapLogger.Info("Catalog service started",
		zap.String("port", cfg.Port),
		zap.String("prefix", cfg.RoutePrefix),
		zap.String("photo_storage", cfg.PhotoStorage),
		zap.Bool("cache", redisClient != nil),
	)
	<-quit
	zapLogger.Info("Shutting down catalog service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exited cleanly")
}

// unitOfWorkFactory binds a fresh unit of work to each request context.
func unitOfWorkFactory(db *gorm.DB) middleware.UnitOfWorkFactory {
	return func(ctx context.Context) repository.UnitOfWork {
		return repository.NewUnitOfWork(db.WithContext(ctx))
	}
}
