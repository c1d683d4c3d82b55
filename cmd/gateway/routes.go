package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/mind-engage/quizsense/internal/api/http"
	"github.com/mind-engage/quizsense/internal/apply"
	auth "github.com/mind-engage/quizsense/internal/auth/middleware"
	"github.com/mind-engage/quizsense/internal/config"
	"github.com/mind-engage/quizsense/internal/rbac"
	"github.com/mind-engage/quizsense/internal/storage"
)

type deps struct {
	cfg     config.Config
	log     *zap.Logger
	engine  *api.Engine
	planner apply.Planner
	rec     api.Recorder
	obs     api.ObservationStore
	keys    api.KeyStore
	blobs   storage.BlobStore
	authSvc *auth.AuthService
	users   auth.Authenticator
	metrics *prometheus.Registry
}

func routes(d deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(d.log), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(d.authSvc, d.users))

	// Public: the extension calls this for every question it sees
	r.Post("/resolve", api.ResolveHandler(d.engine, d.planner, d.rec, d.log))
	r.Get("/engine", api.EngineInfoHandler(d.engine))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.authSvc))

		pr.With(rbac.Require(rbac.PermAnswerKeyUpload)).
			Post("/answer-keys", api.UploadAnswerKeyHandler(d.keys, d.engine, d.log))
		pr.With(rbac.Require(rbac.PermAnswerKeyList)).
			Get("/answer-keys", api.ListAnswerKeysHandler(d.keys))

		pr.With(rbac.Require(rbac.PermObservationsList)).
			Get("/observations", api.ListObservationsHandler(d.obs))
		pr.With(rbac.Require(rbac.PermObservationsList)).
			Get("/observations/unanswered", api.UnansweredHandler(d.obs))
		pr.With(rbac.Require(rbac.PermObservationsExport)).
			Post("/observations/export", api.ExportObservationsHandler(d.obs, d.blobs))
	})

	r.Handle("/metrics", promhttp.HandlerFor(d.metrics, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	return r
}

// requestLogger replaces chi's stdlib logger with zap.
func requestLogger(l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			l.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
