package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"ItemCatalog/internal/auth"
	"ItemCatalog/internal/catalog"
	"ItemCatalog/internal/config"
	"ItemCatalog/pkg/kit"
)

const (
	service     = "catalog"
	initTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := kit.NewLogger(service, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("open catalog store failed", zap.String("backend", cfg.Backend), zap.Error(err))
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	err = store.Init(ctx)
	cancel()
	if err != nil {
		log.Fatal("init catalog store failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var tokens *auth.TokenMaker
	var tokenServer *auth.Server
	if cfg.TokensEnabled() {
		tokens = auth.NewTokenMaker(cfg.TokenSecret)
		tokenServer = &auth.Server{Log: log, Tokens: tokens, TTL: cfg.TokenTTL}
	}

	gate := auth.NewGate(auth.NewFileCredentials(cfg.UsersFile, log), tokens, log, reg)

	s := &catalog.Server{
		Items: catalog.NewService(store, log, reg),
		Log:   log,
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
		Gate:           gate,
		Tokens:         tokenServer,
	})

	log.Info("catalog ready",
		zap.String("backend", cfg.Backend),
		zap.String("users_file", cfg.UsersFile),
		zap.Bool("tokens", cfg.TokensEnabled()),
	)

	if err := kit.RunHTTPServer(cfg.Addr(), h, log, cfg.ShutdownTimeout); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStore(cfg config.Config, log *zap.Logger) (catalog.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if err := db.Close(); err != nil {
				log.Warn("close database", zap.Error(err))
			}
		}
		return catalog.NewPostgresStore(db), closeDB, nil
	case config.BackendMemory:
		return catalog.NewMemStore(), func() {}, nil
	default:
		return catalog.NewFileStore(cfg.CatalogFile, log), func() {}, nil
	}
}
