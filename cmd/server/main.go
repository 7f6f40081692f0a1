package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accesshandler "github.com/Escana/app-escana01-production-sub000/internal/access/handler"
	accessmetrics "github.com/Escana/app-escana01-production-sub000/internal/access/metrics"
	accessservice "github.com/Escana/app-escana01-production-sub000/internal/access/service"
	clienthandler "github.com/Escana/app-escana01-production-sub000/internal/client/handler"
	clientmetrics "github.com/Escana/app-escana01-production-sub000/internal/client/metrics"
	clientservice "github.com/Escana/app-escana01-production-sub000/internal/client/service"
	clientstore "github.com/Escana/app-escana01-production-sub000/internal/client/store"
	"github.com/Escana/app-escana01-production-sub000/internal/guestlist"
	"github.com/Escana/app-escana01-production-sub000/internal/incident"
	jwttoken "github.com/Escana/app-escana01-production-sub000/internal/jwt_token"
	"github.com/Escana/app-escana01-production-sub000/internal/ocr"
	"github.com/Escana/app-escana01-production-sub000/internal/platform/config"
	"github.com/Escana/app-escana01-production-sub000/internal/platform/httpserver"
	"github.com/Escana/app-escana01-production-sub000/internal/platform/logger"
	"github.com/Escana/app-escana01-production-sub000/internal/platform/postgres"
	redisplatform "github.com/Escana/app-escana01-production-sub000/internal/platform/redis"
	"github.com/Escana/app-escana01-production-sub000/internal/stats"
	statshandler "github.com/Escana/app-escana01-production-sub000/internal/stats/handler"
	statsservice "github.com/Escana/app-escana01-production-sub000/internal/stats/service"
	statsstore "github.com/Escana/app-escana01-production-sub000/internal/stats/store"
	httptransport "github.com/Escana/app-escana01-production-sub000/internal/transport/http"
	"github.com/Escana/app-escana01-production-sub000/internal/visit"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/audit"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/audit/kafka"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/audit/publisher"
	auditmemory "github.com/Escana/app-escana01-production-sub000/pkg/platform/audit/store/memory"
	auditpostgres "github.com/Escana/app-escana01-production-sub000/pkg/platform/audit/store/postgres"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/audit/worker"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/tx"
)

// main wires the storage, audit and transport layers and keeps the server
// lifecycle small. Without DATABASE_URL the process runs fully in memory,
// which is the local development mode.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	var (
		clients    clientstore.Store
		visits     visit.Store
		incidents  incident.Store
		auditStore audit.Store
		statsStore stats.Store
		runner     tx.Runner
	)
	if db != nil {
		clients = clientstore.NewPostgres(db)
		visits = visit.NewPostgres(db)
		incidents = incident.NewPostgres(db)
		auditStore = auditpostgres.New(db)
		statsStore = statsstore.NewPostgres(db)
		runner = tx.NewSQLRunner(db)
	} else {
		log.Warn("DATABASE_URL not set, running with in-memory stores")
		memClients := clientstore.NewInMemory()
		memVisits := visit.NewInMemory()
		memIncidents := incident.NewInMemory()
		clients = memClients
		visits = memVisits
		incidents = memIncidents
		auditStore = auditmemory.NewInMemoryStore()
		statsStore = statsstore.NewInMemory(memClients, memVisits, memIncidents)
		runner = tx.NoopRunner{}
	}

	var guests guestlist.Checker
	if redisClient != nil {
		guests = guestlist.NewRedisChecker(redisClient.Client)
	}

	var gateway ocr.Gateway
	if cfg.OCR.BaseURL != "" {
		gateway = ocr.NewHTTPGateway(cfg.OCR.BaseURL, cfg.OCR.Timeout)
	} else {
		log.Warn("OCR_BASE_URL not set, /access/scan is unavailable")
	}

	// The publisher stays synchronous so the outbox row joins the ban
	// transaction; delivery to Kafka is the worker's job.
	auditPublisher := publisher.NewPublisher(auditStore, publisher.WithLogger(log))
	defer auditPublisher.Close()

	if db != nil && len(cfg.KafkaBrokers) > 0 {
		sink, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer sink.Close()

		outbox := worker.New(db, sink, log)
		go func() {
			if err := outbox.Run(ctx); err != nil {
				log.Error("audit outbox worker stopped", "error", err)
			}
		}()
	}

	registry := clientservice.NewRegistry(clients,
		clientservice.WithMetrics(clientmetrics.New()),
		clientservice.WithLogger(log))

	engine := accessservice.NewEngine(accessservice.Dependencies{
		Registry:  registry,
		Visits:    visits,
		Incidents: incidents,
		Guests:    guests,
		Gateway:   gateway,
		Publisher: auditPublisher,
		Tx:        runner,
	},
		accessservice.WithMetrics(accessmetrics.New()),
		accessservice.WithLogger(log))

	statsSvc := statsservice.New(statsStore, statsservice.WithLogger(log))

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "escana", "escana-staff")

	var ready []httptransport.ReadyCheck
	if db != nil {
		ready = append(ready, httptransport.ReadyCheck{Name: "postgres", Check: db.PingContext})
	}
	if redisClient != nil {
		ready = append(ready, httptransport.ReadyCheck{Name: "redis", Check: redisClient.Health})
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger: log,
		Auth:   jwtService,
		Handlers: []httptransport.Registrar{
			accesshandler.New(engine, log),
			clienthandler.New(registry, visits, incidents, log),
			statshandler.New(statsSvc, log),
		},
		Ready: ready,
	})

	srv := httpserver.New(cfg.Addr, router)
	go func() {
		log.Info("starting escana access server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
