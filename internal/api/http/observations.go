package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/mind-engage/quizsense/internal/observe"
	"github.com/mind-engage/quizsense/internal/storage"
)

type ObservationStore interface {
	List(ctx context.Context, opts observe.ListOpts) ([]observe.Observation, error)
	Unanswered(ctx context.Context, limit int) ([]string, error)
	Export(ctx context.Context, store storage.BlobStore, opts observe.ListOpts) (string, int, error)
}

// GET /observations?source=&limit=&offset=
func ListObservationsHandler(repo ObservationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := repo.List(r.Context(), observe.ListOpts{
			Source: strings.TrimSpace(r.URL.Query().Get("source")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GET /observations/unanswered?limit=
func UnansweredHandler(repo ObservationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := repo.Unanswered(r.Context(), parseIntDefault(r.URL.Query().Get("limit"), 100))
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if list == nil {
			list = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// POST /observations/export?source=
func ExportObservationsHandler(repo ObservationStore, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, n, err := repo.Export(r.Context(), blobs, observe.ListOpts{
			Source: strings.TrimSpace(r.URL.Query().Get("source")),
		})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		u, _ := blobs.URL(key)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"key": key, "url": u, "count": n})
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
