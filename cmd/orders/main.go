package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/service"
	ordersHttp "github.com/valentinaBarreto18/marketplaceRepo/internal/orders/transport/http"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/config"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/db"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/kafka"
	outboxRepository "github.com/valentinaBarreto18/marketplaceRepo/pkg/outbox/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/outbox/worker"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/tracing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := tracing.InitTracer(ctx, "orders-service")
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}

	pool, err := db.NewPostgresDB(cfg.Postgres.URL, cfg.Postgres.MaxConns)
	if err != nil {
		log.Fatalf("failed to create pool: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	orderRepo := repository.NewOrderRepository(pool, logger)
	outboxRepo := outboxRepository.NewOutboxRepository(pool, logger)
	cartService := service.NewCartService(logger)
	orderService := service.NewOrderService(pool, logger, orderRepo, outboxRepo, cartService)

	kafkaProducer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatalf("error creating kafka producer: %v", err)
	}

	outboxProcessor := worker.NewOutboxProcessor(pool, outboxRepo, kafkaProducer, logger)
	go outboxProcessor.Start(ctx)

	app := fiber.New(fiber.Config{
		ReadTimeout: cfg.HTTP.ReadTimeout,
	})
	app.Use(otelfiber.Middleware())

	handler := ordersHttp.NewOrderHandler(orderService, cartService, logger)
	ordersHttp.RegisterRoutes(app, handler)

	go func() {
		log.Println("Orders service listening on: " + cfg.HTTP.Port)
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			log.Fatalf("Error listening on HTTP port %v: %v\n", cfg.HTTP.Port, err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP app: %v\n", err)
	}

	if err := kafkaProducer.Close(); err != nil {
		log.Printf("Error closing kafka producer: %v\n", err)
	}

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down telemetry: %v\n", err)
	}

	pool.Close()
}
