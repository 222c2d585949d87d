package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"loot/internal/audit"
	"loot/internal/bag/credential"
	"loot/internal/bag/handler"
	bagmetrics "loot/internal/bag/metrics"
	"loot/internal/bag/pluck"
	"loot/internal/bag/service"
	"loot/internal/bag/traits"
	"loot/internal/caller"
	"loot/internal/platform/circuit"
	"loot/internal/platform/config"
	"loot/internal/platform/database"
	"loot/internal/platform/health"
	"loot/internal/platform/kafka/producer"
	"loot/internal/platform/kv"
	"loot/internal/platform/kv/memory"
	kvpostgres "loot/internal/platform/kv/postgres"
	kvredis "loot/internal/platform/kv/redis"
	"loot/internal/platform/logger"
	"loot/internal/platform/metrics"
	"loot/internal/platform/redis"
	"loot/internal/platform/tracer"
	httptransport "loot/internal/transport/http"
	"loot/migrations"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/bag.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing loot",
		"addr", cfg.Addr,
		"env", cfg.Environment,
		"store", cfg.Store,
		"pluck_scheme", cfg.Pluck.Scheme,
	)

	hc := health.New(cfg.Environment)
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("close failed", "error", err)
			}
		}
	}()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeStore)
	hc.RegisterCheck("kv", store.Health)

	bagMetrics := bagmetrics.New()
	deriver, err := newDeriver(cfg.Pluck, bagMetrics)
	if err != nil {
		return err
	}

	auditor, closeAudit, err := newAuditPublisher(cfg.Events, hc, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeAudit)

	svc, err := service.New(store,
		credential.NewCryptoSource(rand.Reader),
		deriver,
		service.Config{Admin: cfg.AdminAddress(), Recipient: cfg.AdminRecipient()},
		service.WithLogger(log),
		service.WithMetrics(bagMetrics),
		service.WithTracer(tracer.NewOTel()),
		service.WithAuditPublisher(auditor),
	)
	if err != nil {
		return fmt.Errorf("build bag service: %w", err)
	}
	st, err := svc.SyncState(ctx)
	if err != nil {
		return fmt.Errorf("read issuance state: %w", err)
	}
	if st.Paused {
		log.Warn("issuance is paused", "since", st.UpdatedAt, "by", st.UpdatedBy.String())
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Bags:    handler.New(svc, log),
		Health:  hc,
		Tokens:  caller.NewTokenService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		Admin:   cfg.AdminAddress(),
		Metrics: metrics.New(),
		Logger:  log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      httptransport.DefaultRequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore selects the kv backend named by LOOT_STORE.
func openStore(ctx context.Context, cfg config.Server, log *slog.Logger) (kv.Store, func() error, error) {
	switch cfg.Store {
	case "postgres":
		pool, err := database.New(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Migrate(ctx, migrations.FS); err != nil {
			_ = pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		log.Info("using postgres kv store")
		return kvpostgres.New(pool.DB(), cfg.TxTimeout), pool.Close, nil
	case "redis":
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		go recordRedisStats(ctx, client)
		log.Info("using redis kv store", "prefix", cfg.Redis.KeyPrefix)
		store := kvredis.New(client.Client,
			kvredis.WithPrefix(cfg.Redis.KeyPrefix),
			kvredis.WithTxTimeout(cfg.TxTimeout),
		)
		return store, client.Close, nil
	default:
		log.Warn("using in-memory kv store; bags are lost on restart")
		store := memory.New(memory.WithTxTimeout(cfg.TxTimeout))
		return store, store.Close, nil
	}
}

func recordRedisStats(ctx context.Context, client *redis.Client) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			client.RecordPoolStats()
		}
	}
}

func newDeriver(cfg config.PluckConfig, observer pluck.Observer) (*pluck.Deriver, error) {
	scheme, err := pluck.ParseScheme(cfg.Scheme)
	if err != nil {
		return nil, err
	}
	tables := traits.Default()
	if cfg.TablesPath != "" {
		tables, err = traits.Load(cfg.TablesPath)
		if err != nil {
			return nil, fmt.Errorf("load trait tables: %w", err)
		}
	}
	return pluck.New(tables, scheme, pluck.WithObserver(observer)), nil
}

// newAuditPublisher sends audit events to Kafka when brokers are configured
// and keeps them in memory otherwise.
func newAuditPublisher(cfg config.EventsConfig, hc *health.Handler, log *slog.Logger) (*audit.Publisher, func() error, error) {
	opts := []audit.PublisherOption{
		audit.WithAsyncBuffer(cfg.Buffer),
		audit.WithPublisherLogger(log),
	}

	if cfg.Brokers == "" {
		log.Info("audit events kept in memory")
		p := audit.NewPublisher(audit.NewInMemoryStore(), opts...)
		return p, func() error { p.Close(); return nil }, nil
	}

	prod, err := producer.New(producer.Config{
		Brokers:         cfg.Brokers,
		Acks:            cfg.Acks,
		Retries:         3,
		DeliveryTimeout: 10 * time.Second,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("create kafka producer: %w", err)
	}
	hc.RegisterCheck("kafka", func(ctx context.Context) error {
		if !prod.Healthy(ctx) {
			return errors.New("no broker reachable")
		}
		return nil
	})
	log.Info("audit events published to kafka", "topic", cfg.Topic)

	sink := audit.NewFallbackStore(
		audit.NewKafkaStore(prod, cfg.Topic),
		audit.NewLogStore(log),
		circuit.New("kafka"),
		log,
	)
	p := audit.NewPublisher(sink, opts...)
	return p, func() error {
		p.Close()
		return prod.Close()
	}, nil
}
