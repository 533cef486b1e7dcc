package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	communityhandler "rently/internal/community/handler"
	communitymetrics "rently/internal/community/metrics"
	communityservice "rently/internal/community/service"
	communitystore "rently/internal/community/store/community"
	edgestore "rently/internal/community/store/edge"
	"rently/internal/engine"
	listingcache "rently/internal/listing/cache"
	listinghandler "rently/internal/listing/handler"
	listingmetrics "rently/internal/listing/metrics"
	listingservice "rently/internal/listing/service"
	liststore "rently/internal/listing/store/listing"
	historystore "rently/internal/listing/store/renthistory"
	"rently/internal/platform/config"
	"rently/internal/platform/httpserver"
	"rently/internal/platform/logger"
	"rently/internal/platform/metrics"
	"rently/internal/platform/middleware"
	"rently/internal/platform/postgres"
	platformredis "rently/internal/platform/redis"
	httptransport "rently/internal/transport/http"
	userstore "rently/internal/user/store/user"
	verificationhandler "rently/internal/verification/handler"
	verifymetrics "rently/internal/verification/metrics"
	verifyservice "rently/internal/verification/service"
	requeststore "rently/internal/verification/store/request"
	audit "rently/pkg/platform/audit"
	auditpublisher "rently/pkg/platform/audit/publisher"
	auditmemory "rently/pkg/platform/audit/store/memory"
	auditpostgres "rently/pkg/platform/audit/store/postgres"
	auditworker "rently/pkg/platform/audit/worker"
)

// main wires stores, services, the engine façade and the HTTP surface, then
// runs the server until a shutdown signal arrives. Business logic lives in
// the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to open postgres", "error", err.Error())
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Ledger stores: postgres when configured, in-memory otherwise.
	var (
		users      listingservice.UserReader
		userWriter verifyservice.UserStore
		listings   listingservice.ListingStore
		history    listingservice.HistoryStore
		edges      communityservice.EdgeStore
		comms      communityservice.CommunityStore
		requests   verifyservice.RequestStore
		auditStore audit.Store
	)
	if db != nil {
		pgUsers := userstore.NewPostgres(db)
		users, userWriter = pgUsers, pgUsers
		listings = liststore.NewPostgres(db)
		history = historystore.NewPostgres(db)
		edges = edgestore.NewPostgres(db)
		comms = communitystore.NewPostgres(db)
		requests = requeststore.NewPostgres(db)
		auditStore = auditpostgres.New(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		memUsers := userstore.NewInMemory()
		users, userWriter = memUsers, memUsers
		listings = liststore.NewInMemory()
		history = historystore.NewInMemory()
		edges = edgestore.NewInMemory()
		comms = communitystore.NewInMemory()
		requests = requeststore.NewInMemory()
		auditStore = auditmemory.New()
	}

	// Audit pipeline: events flow through a channel into the store worker and,
	// when brokers are configured, out to Kafka as well.
	inbox := make(chan audit.Event, 256)
	worker := auditworker.New(auditStore, inbox, log)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err.Error())
		}
	}()

	var auditor audit.Publisher = auditpublisher.NewChannelPublisher(inbox)
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := auditpublisher.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("failed to start kafka publisher", "error", err.Error())
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := kafka.Close(shutdownCtx); err != nil {
				log.Warn("kafka publisher close failed", "error", err.Error())
			}
		}()
		auditor = auditpublisher.Fanout(auditor, kafka)
	}

	listingOpts := []listingservice.Option{
		listingservice.WithLogger(log),
		listingservice.WithAuditPublisher(auditor),
		listingservice.WithMetrics(listingmetrics.New()),
		listingservice.WithTrustedUsers(edges),
	}
	if redisClient != nil {
		listingOpts = append(listingOpts,
			listingservice.WithBrowseCache(listingcache.NewBrowse(redisClient, cfg.ListingCacheTTL, log)))
	}
	listingSvc := listingservice.New(listings, history, users, listingOpts...)

	communitySvc := communityservice.New(edges, comms, users,
		communityservice.WithLogger(log),
		communityservice.WithAuditPublisher(auditor),
		communityservice.WithMetrics(communitymetrics.New()),
	)

	verifySvc := verifyservice.New(requests, userWriter,
		verifyservice.WithLogger(log),
		verifyservice.WithAuditPublisher(auditor),
		verifyservice.WithMetrics(verifymetrics.New()),
	)

	eng := engine.New(listingSvc, communitySvc, verifySvc)

	jwtValidator := middleware.NewHS256Validator(cfg.JWTSigningKey)
	router := httptransport.NewRouter(httptransport.Config{
		Logger:       log,
		Metrics:      metrics.New(),
		Listings:     listinghandler.New(eng.Listings(), log, jwtValidator, cfg.AdminTokenHash),
		Communities:  communityhandler.New(eng.Communities(), log, jwtValidator),
		Verification: verificationhandler.New(eng.Verifications(), log, jwtValidator, cfg.AdminTokenHash),
		Health:       healthCheck(db, redisClient),
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting rently engine", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}

func healthCheck(db *sql.DB, redisClient *platformredis.Client) func() error {
	return func() error {
		if db != nil {
			if err := db.Ping(); err != nil {
				return err
			}
		}
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := redisClient.Health(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
