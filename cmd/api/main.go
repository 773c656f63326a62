package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/wagerledger/internal/api"
	"github.com/fastprodman/wagerledger/internal/events"
	eventskafka "github.com/fastprodman/wagerledger/internal/events/kafka"
	eventsredis "github.com/fastprodman/wagerledger/internal/events/redis"
	"github.com/fastprodman/wagerledger/internal/infra/logging"
	"github.com/fastprodman/wagerledger/internal/infra/metrics"
	"github.com/fastprodman/wagerledger/internal/infra/pgutils"
	"github.com/fastprodman/wagerledger/internal/repos/oddscache"
	oddsredis "github.com/fastprodman/wagerledger/internal/repos/oddscache/redis"
	"github.com/fastprodman/wagerledger/internal/services/betting"
	"github.com/fastprodman/wagerledger/internal/services/duel"
	"github.com/fastprodman/wagerledger/internal/services/ledger"
	"github.com/fastprodman/wagerledger/internal/services/lifecycle"
	"github.com/fastprodman/wagerledger/internal/services/settlement"
	"github.com/fastprodman/wagerledger/pkg/envconf"
	"github.com/fastprodman/wagerledger/pkg/shutdownqueue"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := new(apiConfig)

	err = envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logger, err := logging.SetupJSON(cfg.LogLevel, "wagerledger-api", cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// registered first so it flushes last
	shutdownqueue.AddCloser("logger sync", func() error {
		_ = logger.Sync() // stdout sync fails on some terminals
		return nil
	})

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.AddCloser("postgres pool", db.Close)

	var (
		cache oddscache.OddsCache
		sinks []events.Publisher
	)

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		shutdownqueue.AddCloser("redis client", rdb.Close)

		err = rdb.Ping(ctx).Err()
		if err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}

		cache = oddsredis.New(rdb, cfg.Redis.OddsTTL)
		sinks = append(sinks, eventsredis.New(rdb))

		slog.Info("redis enabled", "addr", cfg.Redis.Addr)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		pub := eventskafka.New(eventskafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		shutdownqueue.AddCloser("kafka writer", pub.Close)

		sinks = append(sinks, pub)

		slog.Info("kafka enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	// --- Services ---
	retry := pgutils.PolicyFrom(cfg.Wagering)
	emitter := events.NewEmitter(sinks...)
	shutdownqueue.Add("event emitter", emitter.Close)

	ldg := ledger.New(db, retry)
	rounds := lifecycle.New(db, ldg, emitter, cache, retry)
	bets := betting.New(db, ldg, rounds, emitter, retry)
	engine := settlement.New(db, ldg, rounds, retry)
	duels := duel.New(db, rounds, bets, engine, retry)

	// --- HTTP servers ---
	srv := api.NewServer(cfg.Port, api.Services{
		Accounts:   ldg,
		Rounds:     rounds,
		Betting:    bets,
		Settlement: engine,
		Duels:      duels,
	})
	metricsSrv := metrics.NewServer(cfg.Metrics.Port, db.PingContext)

	errCh := make(chan error, 2)

	serve(srv, "api", errCh)
	serve(metricsSrv, "metrics", errCh)

	slog.Info("API started", "port", cfg.Port, "metrics_port", cfg.Metrics.Port)

	select {
	case <-ctx.Done():
		// deferred shutdownqueue.Shutdown stops the servers
		return nil
	case serr := <-errCh:
		return serr
	}
}

// serve starts srv in the background and queues its graceful shutdown.
func serve(srv *http.Server, name string, errCh chan<- error) {
	shutdownqueue.Add(name+" server", srv.Shutdown)

	go func() {
		err := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s server: %w", name, err)
		}
	}()
}
