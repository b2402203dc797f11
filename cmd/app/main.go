package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/flightbook/config"
	"github.com/mkravets/flightbook/internal/bootstrap"
	"github.com/mkravets/flightbook/internal/cache"
	"github.com/mkravets/flightbook/internal/kafka"
	"github.com/mkravets/flightbook/internal/repository"
	"github.com/mkravets/flightbook/internal/service/booking"
	"github.com/mkravets/flightbook/internal/service/flights"
	"github.com/mkravets/flightbook/internal/service/inventory"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.SearchCacheTTL())
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	userRepo := repository.NewUserRepository(pool)
	legRepo := repository.NewFlightLegRepository(pool)
	seatRepo := repository.NewSeatRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	store := inventory.NewStore(seatRepo, redisCache, cfg.Booking.HoldTTL())
	flightService := flights.NewFlightService(legRepo, redisCache,
		flights.WithStatusTopic(producer, cfg.Kafka.FlightStatusTopic))
	engine := booking.NewEngine(userRepo, legRepo, bookingRepo, store, producer,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic))

	if err := bootstrap.Run(ctx, cfg, flightService, engine); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
