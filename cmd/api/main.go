package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"storefront/pkg/config"
	"storefront/pkg/httpapi"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/pkg/order"
	ordermem "storefront/pkg/order/memory"
	orderpg "storefront/pkg/order/postgres"
	orderredis "storefront/pkg/order/redis"
	"storefront/pkg/otel"
	"storefront/pkg/product"
	productmem "storefront/pkg/product/memory"
	productpg "storefront/pkg/product/postgres"
	productredis "storefront/pkg/product/redis"
)

const serviceName = "storefront"

// stores bundles the repositories of the selected driver with its teardown.
type stores struct {
	products product.Repository
	orders   order.Repository
	close    func() error
}

// @title Storefront API
// @version 1.0
// @description Product catalog API of the storefront
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), serviceName, otel.GetTraceID)
	defer log.Sync()
	ctx := context.Background()

	tp, shutdownTracing, err := otel.InitTracing(log, otel.Config{
		ServiceName: serviceName,
		Host:        cfg.OTelHost,
		Probability: cfg.OTelProbability,
	})
	if err != nil {
		log.Error(ctx, "init tracing", "error", err)
		os.Exit(1)
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Error(ctx, "open storage", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	log.Info(ctx, "storage ready", "driver", cfg.StoreDriver, "capacity", cfg.StoreCapacity)

	stop := make(chan struct{})
	var limiter *httpapi.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = httpapi.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limiter.StartCleanup(time.Minute, 10*time.Minute, stop)
	}

	srv, err := httpapi.NewServer(httpapi.Deps{
		Products: st.products,
		Orders:   order.NewService(st.orders, st.products),
		Log:      log,
		Metrics:  metrics.New(),
		Tracer:   tp.Tracer(serviceName),
		Limiter:  limiter,
	})
	if err != nil {
		log.Error(ctx, "build server", "error", err)
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info(ctx, "listening", "addr", cfg.HTTPAddr, "tls", cfg.TLSEnabled())
		var err error
		if cfg.TLSEnabled() {
			err = httpSrv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = httpSrv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server closed", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	log.Info(ctx, "shutdown signal", "signal", s.String())
	close(stop)

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "http shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error(ctx, "tracing shutdown", "error", err)
	}
	if err := st.close(); err != nil {
		log.Error(ctx, "close storage", "error", err)
	}
	log.Info(ctx, "stopped")
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return stores{}, fmt.Errorf("db connect: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return stores{}, fmt.Errorf("db ping: %w", err)
		}
		products := productpg.New(db, cfg.StoreCapacity)
		orders := orderpg.New(db, cfg.StoreCapacity)
		if err := products.Migrate(ctx); err != nil {
			db.Close()
			return stores{}, err
		}
		if err := orders.Migrate(ctx); err != nil {
			db.Close()
			return stores{}, err
		}
		return stores{products: products, orders: orders, close: db.Close}, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return stores{}, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return stores{
			products: productredis.New(client, cfg.RedisPrefix, cfg.StoreCapacity),
			orders:   orderredis.New(client, cfg.RedisPrefix, cfg.StoreCapacity),
			close:    client.Close,
		}, nil

	default:
		return stores{
			products: productmem.New(cfg.StoreCapacity),
			orders:   ordermem.New(cfg.StoreCapacity),
			close:    func() error { return nil },
		}, nil
	}
}
