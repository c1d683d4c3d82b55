package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mind-engage/quizsense/internal/answer"
	"github.com/mind-engage/quizsense/internal/apply"
	"github.com/mind-engage/quizsense/internal/observe"
	"github.com/mind-engage/quizsense/internal/resolver"
)

// Recorder stores resolutions; see observe.Repo.
type Recorder interface {
	Append(ctx context.Context, q answer.Question, res resolver.Resolution) (observe.Observation, error)
}

type resolveRequest struct {
	Text string      `json:"text"`
	Code string      `json:"code"`
	Form *apply.Form `json:"form,omitempty"`
}

type resolveResponse struct {
	Answer answer.Answer `json:"answer"`
	Source string        `json:"source"`
	Plan   *apply.Plan   `json:"plan,omitempty"`
}

// POST /resolve  { "text": "...", "code": "...", "form": {...} }
// rec may be nil.
func ResolveHandler(eng *Engine, planner apply.Planner, rec Recorder, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q := answer.Question{Text: strings.TrimSpace(req.Text), Code: req.Code}
		if q.Text == "" {
			http.Error(w, "text required", http.StatusBadRequest)
			return
		}

		res := eng.Current().Explain(q)
		out := resolveResponse{Answer: res.Answer, Source: res.Source}
		if req.Form != nil && planner != nil {
			plan, err := planner.Plan(r.Context(), res.Answer, *req.Form)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			out.Plan = &plan
		}
		if rec != nil {
			if _, err := rec.Append(r.Context(), q, res); err != nil {
				log.Warn("record observation", zap.Error(err))
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

// GET /engine  current key size and recognizer order
func EngineInfoHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := eng.Current()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"entries":     d.Key().Len(),
			"variants":    d.Key().VariantCount(),
			"recognizers": d.Recognizers(),
		})
	}
}
