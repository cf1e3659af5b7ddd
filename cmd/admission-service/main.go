package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"

	"ms-admission/internal/admission"
	"ms-admission/internal/admission/api"
	admissiondb "ms-admission/internal/admission/db"
	"ms-admission/internal/auth"
	"ms-admission/internal/cache"
	"ms-admission/internal/config"
	"ms-admission/internal/kafka"
	"ms-admission/internal/logger"
)

func openDatabase(cfg *config.Config, log *logger.Logger) *bun.DB {
	if cfg.Database.DSN == "" {
		log.Fatal("DATABASE", "MYSQL_DSN not set")
	}
	sqldb, err := sql.Open("mysql", cfg.Database.DSN)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open MySQL: %v", err))
	}
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to MySQL: %v", err))
	}
	log.Info("DATABASE", "MySQL connection successful")

	return bun.NewDB(sqldb, mysqldialect.New())
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger()

	bunDB := openDatabase(cfg, log)
	defer bunDB.Close()

	if err := admissiondb.InitSchema(bunDB); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Schema init failed: %v", err))
	}

	var snapshots admission.SnapshotCache
	if cfg.Redis.Enabled {
		redisClient, err := cache.Connect(cfg.Redis.Addr)
		if err != nil {
			log.Fatal("CACHE", fmt.Sprintf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err))
		}
		defer redisClient.Close()
		snapshots = cache.NewSnapshotCache(redisClient, cfg.Admission.CacheTTL)
		log.Info("CACHE", fmt.Sprintf("Redis snapshot cache ready at %s (TTL %s)", cfg.Redis.Addr, cfg.Admission.CacheTTL))
	} else {
		log.Warn("CACHE", "Redis disabled, reads go straight to the store")
	}

	var events admission.EventPublisher
	if cfg.Kafka.Enabled {
		topics := []string{cfg.Kafka.Topics.TicketEvents, cfg.Kafka.Topics.OpsEvents}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic setup failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.TicketEvents, cfg.Kafka.Topics.OpsEvents)
		defer producer.Close()
		events = producer
		log.Info("KAFKA", fmt.Sprintf("Event producer ready on %v", cfg.Kafka.Brokers))
	}

	policy := admission.NewPartialEntryPolicy(cfg.Admission.PartialEntryCategories)
	service := admission.NewService(&admissiondb.DB{Bun: bunDB}, snapshots, events, policy, log)
	handler := api.NewHandler(service, auth.Credentials{
		AdminReset: cfg.Credentials.AdminReset,
		MenuUpdate: cfg.Credentials.MenuUpdate,
		Admin:      cfg.Credentials.Admin,
	})

	r := chi.NewRouter()
	r.Mount("/", handler.Routes())

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Admission service on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("SERVER", "Admission service shutdown complete")
}
