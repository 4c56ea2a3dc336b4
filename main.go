package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
	"gorm.io/gorm"

	"shopcore/internal/cache"
	"shopcore/internal/config"
	"shopcore/internal/handlers"
	"shopcore/internal/middleware"
	"shopcore/internal/repositories"
	"shopcore/internal/services"
	"shopcore/pkg/assets"
	"shopcore/pkg/database"
	"shopcore/pkg/rabbitmq"
)

// integrations are the optional collaborators; nil ones are disabled.
type integrations struct {
	cache     services.ProductCache
	images    services.ImageStore
	publisher services.EventPublisher
}

// application is the wired HTTP app plus the order event handler the
// broker consumer feeds.
type application struct {
	app         *fiber.App
	orderEvents *services.OrderEventHandler
}

func newApp(db *gorm.DB, jwtSecret string, in integrations) *application {
	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	oracle := repositories.NewGORMDeliveryOracle(db)
	tx := repositories.NewGORMTransactor(db)

	// --- Services ---
	stockService := services.NewStockService(productRepo, tx, in.cache, in.publisher)
	productService := services.NewProductService(productRepo, in.images, in.cache)
	cartService := services.NewCartService(cartRepo, productRepo, stockService, tx)
	reviewService := services.NewReviewService(reviewRepo, productRepo, oracle, tx, in.publisher)
	authService := services.NewAuthService(userRepo, jwtSecret)

	app := fiber.New()
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status, code = "degraded", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	auth := middleware.AuthRequired(authService)
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewProductHandler(productService, stockService).RegisterRoutes(apiV1, auth)
	handlers.NewCartHandler(cartService).RegisterRoutes(apiV1, auth)
	handlers.NewReviewHandler(reviewService).RegisterRoutes(apiV1, auth)

	return &application{
		app:         app,
		orderEvents: services.NewOrderEventHandler(stockService),
	}
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Database ---
	db, err := database.Open(database.Config{Driver: cfg.DBDriver, DSN: cfg.DatabaseDSN})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := repositories.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var in integrations

	// --- Redis product cache ---
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("Warning: Redis at %s is unreachable, lookups will miss: %v", cfg.RedisAddr, err)
		}
		in.cache = cache.NewRedisProductCache(redisClient, cfg.ProductCacheTTL)
	}

	// --- MinIO image store ---
	if cfg.MinioEndpoint != "" {
		assetCfg := assets.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		}
		minioClient, err := assets.NewMinioClient(assetCfg)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO client: %v", err)
		}
		imageStore := assets.NewImageStore(minioClient, assetCfg)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = imageStore.EnsureBucket(ctx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to prepare bucket %s: %v", cfg.MinioBucket, err)
		}
		in.images = imageStore
	}

	// --- RabbitMQ ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.RabbitMQExchange,
			Queue:    cfg.RabbitMQQueue,
		})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		in.publisher = mqClient
	}

	a := newApp(db, cfg.JWTSecret, in)

	// --- Order event consumer ---
	if mqClient != nil {
		err := mqClient.ConsumeOrderEvents(func(msg amqp.Delivery) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return a.orderEvents.Handle(ctx, msg.Body)
		})
		if err != nil {
			log.Fatalf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := a.app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := a.app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server gracefully stopped")
}
