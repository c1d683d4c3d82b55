package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/mind-engage/quizsense/internal/answerkey"
	api "github.com/mind-engage/quizsense/internal/api/http"
	"github.com/mind-engage/quizsense/internal/apply"
	auth "github.com/mind-engage/quizsense/internal/auth/middleware"
	"github.com/mind-engage/quizsense/internal/config"
	"github.com/mind-engage/quizsense/internal/db"
	"github.com/mind-engage/quizsense/internal/keystore"
	"github.com/mind-engage/quizsense/internal/logging"
	"github.com/mind-engage/quizsense/internal/metrics"
	"github.com/mind-engage/quizsense/internal/observe"
	"github.com/mind-engage/quizsense/internal/resolver"
	"github.com/mind-engage/quizsense/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("gateway stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()
	keys := keystore.NewSQLStore(dbh)

	// --- Answer key ---
	key, err := initialKey(ctx, cfg, keys, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	resolutions := metrics.NewResolutions(reg)

	eng := api.NewEngine(key, func(k *answerkey.Key) *resolver.Dispatcher {
		return resolver.New(k,
			resolver.WithLogger(logger.Named("resolver")),
			resolver.WithCache(cfg.CacheSize),
			resolver.WithObserver(resolutions))
	})

	blobs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		return err
	}

	var rec api.Recorder
	repo := observe.NewRepo(dbh)
	if cfg.RecordObservations {
		rec = repo
	}

	r := routes(deps{
		cfg:     cfg,
		log:     logger,
		engine:  eng,
		planner: apply.New(apply.WithMaxEditDistance(cfg.MatchMaxEdit), apply.WithNumericTolerance(cfg.MatchNumericTol)),
		rec:     rec,
		obs:     repo,
		keys:    keys,
		blobs:   blobs,
		authSvc: auth.NewAuthService(cfg.AuthHMACSecret),
		users:   auth.StaticAdmin{User: cfg.AdminUser, PassHash: cfg.AdminPassHash},
		metrics: reg,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("mode", string(cfg.Mode)),
		zap.String("db", cfg.DBDriver),
		zap.Int("key_entries", key.Len()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// initialKey loads ANSWER_KEY_PATH when set (storing it unless it is already
// the newest stored document), otherwise the newest stored key, otherwise an
// empty one.
func initialKey(ctx context.Context, cfg config.Config, keys *keystore.SQLStore, logger *zap.Logger) (*answerkey.Key, error) {
	if cfg.AnswerKeyPath != "" {
		doc, err := os.ReadFile(cfg.AnswerKeyPath)
		if err != nil {
			return nil, err
		}
		format := answerkey.FormatFromPath(cfg.AnswerKeyPath)
		if latest, err := keys.Latest(ctx); err == nil && bytes.Equal(latest.Document, doc) {
			logger.Info("answer key unchanged", zap.String("id", latest.ID))
			return answerkey.Parse(doc, format)
		}
		rec, key, err := keys.Put(ctx, keystore.Upload{
			Name:       cfg.AnswerKeyPath,
			Format:     format,
			Document:   doc,
			UploadedBy: "gateway",
		})
		if err != nil {
			return nil, err
		}
		logger.Info("answer key loaded", zap.String("path", cfg.AnswerKeyPath), zap.String("id", rec.ID))
		return key, nil
	}
	key, rec, err := keys.LoadLatest(ctx)
	switch {
	case errors.Is(err, keystore.ErrNotFound):
		logger.Warn("no answer key stored; recognizers only")
		return answerkey.Empty(), nil
	case err != nil:
		return nil, err
	}
	logger.Info("answer key loaded", zap.String("id", rec.ID), zap.String("name", rec.Name))
	return key, nil
}
