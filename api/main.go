package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/DeafMist/federal-archive/backend/internal/auth"
	"github.com/DeafMist/federal-archive/backend/internal/changefeed"
	"github.com/DeafMist/federal-archive/backend/internal/config"
	"github.com/DeafMist/federal-archive/backend/internal/docstore"
	"github.com/DeafMist/federal-archive/backend/internal/elasticsearch"
	"github.com/DeafMist/federal-archive/backend/internal/logger"
	"github.com/DeafMist/federal-archive/backend/internal/metrics"
	"github.com/DeafMist/federal-archive/backend/internal/query"
	"github.com/DeafMist/federal-archive/backend/internal/render"
	"github.com/DeafMist/federal-archive/backend/internal/session"
)

func main() {
	log := logger.New("api")
	if err := run(log); err != nil {
		log.Error("api stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.LoadAPI()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, log)
	if err != nil {
		return err
	}
	if err := esClient.WaitReady(ctx, 10, 2*time.Second); err != nil {
		return err
	}
	if cfg.CollectionScope == config.ScopeGlobal {
		initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := esClient.EnsureIndex(initCtx, docstore.IndexName(docstore.GlobalCollection))
		cancel()
		if err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	revocations, closeRevocations, err := newRevocations(ctx, cfg.RedisURL, log)
	if err != nil {
		return err
	}
	defer closeRevocations()

	publisher := changefeed.NewPublisher(cfg.KafkaBrokers, cfg.ChangesTopic, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("close change publisher", slog.Any("err", err))
		}
	}()

	store := docstore.New(esClient, publisher, changefeed.NewReaderFactory(cfg.KafkaBrokers, cfg.ChangesTopic), docstore.Options{
		PageSize: cfg.PageSize,
		Log:      log,
		Metrics:  m,
	})

	authenticator := auth.NewAuthenticator(auth.Options{
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: cfg.AdminPasswordHash,
		SigningKey:        cfg.JWTSigningKey,
		TokenTTL:          cfg.TokenTTL,
		Revocations:       revocations,
		Log:               log,
		Metrics:           m,
	})
	if cfg.AdminEmail == "" {
		log.Warn("ADMIN_EMAIL not set, admin sign-in is disabled")
	}

	sessions := session.NewRegistry(func() session.Provider { return authenticator.NewClient() }, cfg.SessionIdleTTL, log)
	defer sessions.CloseAll()

	srv := &server{
		log:      log,
		scope:    cfg.CollectionScope,
		health:   esClient,
		store:    store,
		planner:  query.NewPlanner(log, m),
		render:   render.New(cfg.SummaryLength),
		auth:     authenticator,
		sessions: sessions,
		gatherer: reg,
	}

	// No WriteTimeout: the admin stream is long-lived and sets its own deadlines.
	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("api server starting",
			slog.String("addr", cfg.BindAddr),
			slog.String("scope", cfg.CollectionScope),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sessions.Run(gctx, sweepInterval(cfg.SessionIdleTTL))
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received")
		sessions.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// sweepInterval checks for idle sessions a few times per TTL, between once a second
// and once a minute.
func sweepInterval(idle time.Duration) time.Duration {
	return max(min(idle/4, time.Minute), time.Second)
}

// newRevocations picks the token revocation list: Redis when configured, process
// memory otherwise.
func newRevocations(ctx context.Context, redisURL string, log *slog.Logger) (auth.RevocationList, func(), error) {
	if redisURL == "" {
		log.Info("REDIS_URL not set, token revocations kept in memory")
		return auth.NewMemoryRevocations(), func() {}, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := auth.NewRedisClient(pingCtx, redisURL)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewRedisRevocations(client), func() {
		if err := client.Close(); err != nil {
			log.Warn("close redis", slog.Any("err", err))
		}
	}, nil
}
