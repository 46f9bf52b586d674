package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ms-seating/internal/catalog"
	"ms-seating/internal/config"
	"ms-seating/internal/database/migrations"
	"ms-seating/internal/kafka"
	"ms-seating/internal/logger"
	seatdb "ms-seating/internal/seats/db"
	seatredis "ms-seating/internal/seats/redis"
	"ms-seating/internal/seats/seat_api"
	"ms-seating/internal/seats/seatsync"
	"ms-seating/internal/seats/service"
	"ms-seating/internal/seats/store"
	"ms-seating/internal/sse"
	"ms-seating/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// openDatabase connects to Postgres with a few retries, or opens SQLite
func openDatabase(cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	if cfg.Driver == "sqlite" {
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		log.Info("DATABASE", fmt.Sprintf("Using SQLite database %s", cfg.DSN))
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to PostgreSQL after %d attempts: %w", maxRetries, err)
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// prepareSchema migrates Postgres or creates the table directly on SQLite
func prepareSchema(ctx context.Context, cfg *config.Config, bunDB *bun.DB, seatDB *seatdb.DB, log *logger.Logger) error {
	if cfg.Database.Driver == "sqlite" {
		return seatDB.CreateSchema(ctx)
	}
	if !cfg.Migrations.Auto {
		log.Info("MIGRATE", "Automatic migrations disabled")
		return nil
	}
	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{MigrationsDir: cfg.Migrations.Dir, AutoMigrate: true}, log)
	defer runner.Close()
	return runner.RunMigrations()
}

func apiLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.LogAPI(r.Method, r.URL.Path, fmt.Sprintf("%d", ww.Status()), time.Since(start).String())
		})
	}
}

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	log := logger.NewLogger(cfg.Log.Dir, cfg.Log.Service)
	defer log.Close()
	log.SetLevel(cfg.Log.Level)

	if envErr != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	log.Info("APP", "Starting seating service initialization")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bunDB, err := openDatabase(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	seatDB := &seatdb.DB{Bun: bunDB}
	if err := prepareSchema(ctx, cfg, bunDB, seatDB, log); err != nil {
		log.Fatal("MIGRATE", fmt.Sprintf("Schema preparation failed: %v", err))
	}

	instanceID := uuid.NewString()
	adapter := seatsync.NewAdapter(seatDB, log, instanceID, cfg.Sync.PersistTimeout)

	var producer *kafka.Producer
	if cfg.Kafka.Enabled || cfg.Notifier == config.NotifierKafka {
		if err := kafka.EnsureTopicsExist(ctx, cfg.Kafka.Brokers, []string{cfg.Kafka.Topic}, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		adapter.Publisher = producer
		log.LogKafka("PRODUCER", cfg.Kafka.Topic, "seat change producer initialized")
	}

	var notifiers []seatsync.Notifier
	switch cfg.Notifier {
	case config.NotifierPostgres:
		if cfg.Database.Driver != "postgres" {
			log.Warn("SYNC", "Postgres notifications need the postgres driver, change feed disabled")
			break
		}
		notifiers = append(notifiers, seatdb.NewListener(cfg.Database.DSN, log))
	case config.NotifierRedis:
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
		}
		notifier := seatredis.NewNotifier(redisClient, cfg.Redis.Channel, log)
		adapter.Announcer = notifier
		notifiers = append(notifiers, notifier)
	case config.NotifierKafka:
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer consumer.Close()
		notifiers = append(notifiers, consumer)
	case config.NotifierNone:
		log.Warn("SYNC", "No change notifier configured, remote changes will not be seen")
	default:
		log.Fatal("CONFIG", fmt.Sprintf("Unknown SEAT_NOTIFIER %q", cfg.Notifier))
	}

	venue := catalog.Default()
	log.Info("CATALOG", fmt.Sprintf("Venue loaded: %d sectors, %d seats", len(venue.Sectors()), venue.TotalSeats()))

	seatService := service.NewSeatService(venue, store.New(), adapter, log)
	emitter := sse.NewSeatEventEmitter()
	seatService.OnChange(emitter.Emit)

	loadCtx, loadCancel := context.WithTimeout(ctx, cfg.Sync.LoadTimeout)
	if err := seatService.Reload(loadCtx); err != nil {
		log.Error("SYNC", fmt.Sprintf("Initial load failed, starting with every seat free: %v", err))
	}
	loadCancel()

	adapter.OnChange(ctx, func(ctx context.Context) {
		reloadCtx, cancel := context.WithTimeout(ctx, cfg.Sync.LoadTimeout)
		defer cancel()
		_ = seatService.Reload(reloadCtx)
	}, notifiers...)

	handler := seat_api.NewHandler(seatService, venue, log)
	sseHandler := seat_api.NewSSEHandler(log, emitter, venue, seatService.Snapshot)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		resp := utils.SuccessResponse("ok", map[string]interface{}{
			"instance":    instanceID,
			"seats_taken": seatService.Store.Len(),
		})
		if err := bunDB.PingContext(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			resp = utils.ErrorResponse("database unreachable", err.Error())
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	})
	r.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
		r.Get("/seating/stream", sseHandler.HandleStream)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		// streams end when the service context is cancelled
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Seating service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	}
	adapter.Wait()
	log.Info("APP", "Seating service shutdown complete")
}
