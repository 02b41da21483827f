package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"fablink/db"
	"fablink/db/migrations"
	"fablink/internal/auth"
	"fablink/internal/config"
	"fablink/internal/handlers"
	"fablink/internal/logger"
	"fablink/internal/mirror"
	"fablink/internal/router"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	format := cfg.Log.Format
	if cfg.IsProduction() {
		format = "json"
	}
	log := logger.New(cfg.Log.Level, format)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("cannot connect to DB", zap.Error(err))
	}
	defer dbConn.Close()
	dbConn.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbConn.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbConn.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if cfg.Database.MigrateOnStart {
		if err := migrations.Run(dbConn.DB); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
	}
	store := db.NewStorage(dbConn)

	var blacklist auth.Blacklist
	if cfg.Redis.Address != "" {
		client, err := auth.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("cannot connect to redis", zap.Error(err))
		}
		defer client.Close()
		blacklist = auth.NewRedisBlacklist(client)
	} else {
		log.Warn("redis address not set, revoked tokens are kept in memory")
		blacklist = auth.NewMemoryBlacklist()
	}

	var progress handlers.ProgressMirror = mirror.Disabled{}
	if cfg.Mongo.Enabled {
		client, err := mirror.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
		if err != nil {
			log.Fatal("cannot connect to mongo", zap.Error(err))
		}
		defer client.Disconnect(context.Background())

		m := mirror.New(client.Database(cfg.Mongo.Database),
			cfg.Mongo.DesignerCollection, cfg.Mongo.FactoryCollection, cfg.Location(), log)
		if err := m.EnsureIndexes(ctx); err != nil {
			log.Warn("mongo indexes not ensured", zap.Error(err))
		}
		progress = m

		if cfg.Mongo.SyncSchedule != "" {
			syncer := mirror.NewSyncer(store, m, log)
			if err := syncer.Start(cfg.Mongo.SyncSchedule); err != nil {
				log.Fatal("mirror sync", zap.Error(err))
			}
			defer syncer.Stop()
		}
	}

	tokens := auth.NewTokenService(cfg.Auth.SecretKey, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	h := handlers.NewHandler(store, tokens, blacklist, progress)
	h.Location = cfg.Location()
	h.Env = cfg.Primary.Env

	srv := &http.Server{
		Addr: cfg.Server.Address,
		Handler: router.New(h, router.Options{
			CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
			AuthRateLimit:      cfg.Server.AuthRateLimit,
			AuthRateBurst:      cfg.Server.AuthRateBurst,
		}, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("starting server", zap.String("address", srv.Addr), zap.String("env", cfg.Primary.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
