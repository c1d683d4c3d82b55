package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mind-engage/quizsense/internal/answerkey"
	auth "github.com/mind-engage/quizsense/internal/auth/middleware"
	"github.com/mind-engage/quizsense/internal/keystore"
	"github.com/mind-engage/quizsense/internal/qti"
)

type KeyStore interface {
	Put(ctx context.Context, up keystore.Upload) (keystore.Record, *answerkey.Key, error)
	List(ctx context.Context, limit int) ([]keystore.Record, error)
}

const maxKeyDocument = 8 << 20

// formatQTI marks a zipped QTI content package; it is converted to a JSON
// document before storage.
const formatQTI answerkey.Format = "qti"

// POST /answer-keys?name=&format=json|yaml|qti  body: the document
// A stored key replaces the one being served.
func UploadAnswerKeyHandler(keys KeyStore, eng *Engine, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxKeyDocument))
		if err != nil {
			http.Error(w, "document too large", http.StatusRequestEntityTooLarge)
			return
		}
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			name = "upload"
		}
		format := requestFormat(r)
		if format == formatQTI {
			var skipped []qti.Skipped
			doc, skipped, err = qti.Convert(bytes.NewReader(doc), int64(len(doc)))
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			for _, s := range skipped {
				log.Debug("qti item skipped", zap.String("item", s.ID), zap.String("reason", s.Reason))
			}
			format = answerkey.FormatJSON
		}
		by, _ := auth.Subject(r.Context())
		rec, key, err := keys.Put(r.Context(), keystore.Upload{
			Name:       name,
			Format:     format,
			Document:   doc,
			UploadedBy: by,
		})
		if err != nil {
			if errors.Is(err, answerkey.ErrInvalidDocument) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		eng.Swap(key)
		log.Info("answer key swapped",
			zap.String("id", rec.ID),
			zap.String("name", rec.Name),
			zap.String("by", rec.UploadedBy),
			zap.Int("entries", rec.Entries))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rec)
	}
}

// GET /answer-keys?limit=
func ListAnswerKeysHandler(keys KeyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := keys.List(r.Context(), parseIntDefault(r.URL.Query().Get("limit"), 20))
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if list == nil {
			list = []keystore.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

func requestFormat(r *http.Request) answerkey.Format {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "yaml", "yml":
		return answerkey.FormatYAML
	case "json":
		return answerkey.FormatJSON
	case "qti", "zip":
		return formatQTI
	}
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(ct, "yaml"):
		return answerkey.FormatYAML
	case strings.Contains(ct, "zip"):
		return formatQTI
	}
	return answerkey.FormatJSON
}
