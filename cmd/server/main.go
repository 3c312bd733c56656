package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raydebug/puretexaspoker-sub003/engine"
	"github.com/raydebug/puretexaspoker-sub003/internal/logging"
	"github.com/raydebug/puretexaspoker-sub003/internal/server"
	"github.com/raydebug/puretexaspoker-sub003/internal/session"
	"github.com/raydebug/puretexaspoker-sub003/internal/storage"
	"github.com/raydebug/puretexaspoker-sub003/internal/ws"
)

func main() {
	config := LoadConfig()
	logger := logging.New("poker")

	var store storage.Store
	if config.PostgresDSN != "" {
		pg, err := storage.NewPostgresStore(config.PostgresDSN)
		if err != nil {
			logger.Fatal("connect postgres", "err", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pg.EnsureSchema(ctx); err != nil {
			cancel()
			logger.Fatal("ensure schema", "err", err)
		}
		cancel()
		store = pg
		logger.Info("audit store: postgres")
	} else {
		store = storage.NewMemoryStore()
		logger.Info("audit store: in-memory")
	}
	defer store.Close()

	var sessions session.Registry
	if config.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("connect redis", "err", err)
		}
		sessions = session.NewRedisRegistry(client, 24*time.Hour)
		logger.Info("session registry: redis", "addr", config.RedisAddr)
	} else {
		sessions = session.NewMemoryRegistry()
		logger.Info("session registry: in-memory")
	}

	writer := storage.NewAsyncWriter(store, logger)
	defer writer.Stop()

	registry := engine.NewRegistry(writer)
	registry.Supervisor().SetGrace(config.DisconnectGrace)

	hub := ws.NewHub(registry, logger)
	go hub.Run()
	defer hub.Close()
	go hub.PumpEvents(registry.Events())

	srv := server.New(registry, store, sessions, hub, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, config.ServerAddr); err != nil {
		logger.Fatal("server exited", "err", err)
	}
	logger.Info("shutdown complete")
}
