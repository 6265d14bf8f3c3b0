package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rookgm/homechef/config"
	"github.com/rookgm/homechef/internal/auth"
	"github.com/rookgm/homechef/internal/cache"
	"github.com/rookgm/homechef/internal/catalog"
	"github.com/rookgm/homechef/internal/events"
	handler "github.com/rookgm/homechef/internal/handler/http"
	"github.com/rookgm/homechef/internal/logger"
	"github.com/rookgm/homechef/internal/middleware"
	"github.com/rookgm/homechef/internal/models"
	"github.com/rookgm/homechef/internal/repository"
	"github.com/rookgm/homechef/internal/repository/postgres"
	"github.com/rookgm/homechef/internal/reviews"
	"github.com/rookgm/homechef/internal/service"
	"github.com/rookgm/homechef/internal/telemetry"
	"github.com/rookgm/homechef/internal/worker"
	"go.uber.org/zap"
)

const (
	serviceName   = "homechef"
	chatQueueSize = 1024
)

type eventSink interface {
	service.EventPublisher
	worker.ChannelCreator
}

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	// create context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracer, err := telemetry.SetupTracer(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Log.Fatal("Error initializing tracer", zap.Error(err))
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if err := shutdownTracer(sctx); err != nil {
			logger.Log.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	token, err := auth.NewAuthToken(cfg.TokenKey)
	if err != nil {
		logger.Log.Fatal("Error creating token service", zap.Error(err))
	}

	// order read cache
	var orderCache cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		orderCache = cache.NewRedisCache(cfg.RedisAddr, serviceName)
	}

	// events and chat channels
	var sink eventSink = events.LogPublisher{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		producer, err := events.NewProducer(brokers, cfg.KafkaTopic, events.Credentials{
			Username: cfg.KafkaUsername,
			Password: cfg.KafkaPassword,
		})
		if err != nil {
			logger.Log.Fatal("Error creating kafka producer", zap.Error(err))
		}
		defer producer.Close()
		sink = producer
	}

	dispatcher := worker.NewChannelDispatcher(sink, chatQueueSize, cfg.ChatRetryInterval)
	go dispatcher.Run(ctx)

	// dependency injection
	orderRepo := repository.NewOrderRepository(db)
	cartRepo := repository.NewCartRepository(db)
	catalogClient := catalog.NewClient(cfg.CatalogAddr)
	reviewsClient := reviews.NewClient(cfg.ReviewsAddr)

	// order
	orderService := service.NewOrderService(orderRepo, cartRepo, catalogClient, reviewsClient, sink, dispatcher, orderCache)
	orderHandler := handler.NewOrderHandler(orderService)

	// cart
	cartService := service.NewCartService(cartRepo, catalogClient)
	cartHandler := handler.NewCartHandler(cartService)

	router := chi.NewRouter()

	router.Use(chimw.RequestID)
	router.Use(chimw.Recoverer)
	router.Use(middleware.Tracing(serviceName))
	router.Use(middleware.Logging(logger.Log))

	router.Post("/api/price-quote", cartHandler.PriceQuote())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(handler.AuthMiddleware(token))

		group.Get("/api/cart", cartHandler.GetCart())
		group.Post("/api/cart/items", cartHandler.AddCartItem())

		group.Post("/api/orders", orderHandler.CreateOrder())
		group.Get("/api/orders", orderHandler.ListUserOrders())
		group.Get("/api/orders/{id}", orderHandler.GetOrder())
		group.Patch("/api/orders/{id}/status", orderHandler.UpdateOrderStatus())
		group.Post("/api/orders/{id}/cancel", orderHandler.CancelOrder())
		group.Delete("/api/orders/{id}", orderHandler.DeleteOrder())
		group.Get("/api/orders/{id}/products/{productID}/can-review", orderHandler.CanReviewProduct())
		group.Post("/api/orders/{id}/products/{productID}/reviews", orderHandler.SubmitReview())

		group.With(handler.RequireRole(models.RoleSeller)).Get("/api/chef/orders", orderHandler.ListChefOrders())

		group.Route("/api/admin", func(admin chi.Router) {
			admin.Use(handler.RequireRole(models.RoleAdmin))
			admin.Get("/orders", orderHandler.ListAllOrders())
			admin.Delete("/orders/{id}", orderHandler.HardDeleteOrder())
		})
	})

	server := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer scancel()
		if err := server.Shutdown(sctx); err != nil {
			logger.Log.Error("Error shutting down server", zap.Error(err))
		}
	}()

	logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}
}
