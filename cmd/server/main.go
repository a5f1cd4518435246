package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/decisio/retail-dss/internal/config"
	"github.com/decisio/retail-dss/internal/httpx"
	"github.com/decisio/retail-dss/internal/ingest"
	"github.com/decisio/retail-dss/internal/metrics"
	"github.com/decisio/retail-dss/internal/store"
)

// defaultSession receives a dataset preloaded from a configured feed or
// database, so single-tenant deployments can skip the upload step.
const defaultSession = "default"

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	st := store.NewSessionStore()
	mSvc := metrics.NewService()

	preload(logger, cfg, st, mSvc)

	r := httpx.NewRouter(logger, st, mSvc, cfg)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func preload(logger *slog.Logger, cfg config.Config, st *store.SessionStore, mSvc *metrics.Service) {
	switch {
	case cfg.FeedURL != "":
		rows, err := ingest.FetchFeed(ingest.NewHTTPClient(cfg.HTTPTimeout()), cfg.FeedURL)
		if err != nil {
			logger.Warn("feed preload failed", slog.String("err", err.Error()))
			return
		}
		st.PutDataset(defaultSession, rows)
		mSvc.SetDatasetRows(defaultSession, len(rows))
		logger.Info("preloaded dataset from feed", slog.Int("rows", len(rows)))
	case cfg.MySQLDSN != "":
		db, err := ingest.OpenMySQL(cfg.MySQLDSN)
		if err != nil {
			logger.Warn("mysql open failed", slog.String("err", err.Error()))
			return
		}
		defer db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout())
		defer cancel()
		rows, err := ingest.LoadMySQL(ctx, db, cfg.MySQLTable)
		if err != nil {
			logger.Warn("mysql preload failed", slog.String("err", err.Error()))
			return
		}
		st.PutDataset(defaultSession, rows)
		mSvc.SetDatasetRows(defaultSession, len(rows))
		logger.Info("preloaded dataset from mysql", slog.Int("rows", len(rows)))
	}
}
