// Package observe records every question the service resolved, so unknown
// questions can be reviewed and added to the answer key later.
package observe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/quizsense/internal/answer"
	"github.com/mind-engage/quizsense/internal/resolver"
)

type Observation struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Code      string          `json:"code,omitempty"`
	Source    string          `json:"source"`
	Answer    json.RawMessage `json:"answer"`
	CreatedAt int64           `json:"created_at"` // unix seconds
}

type ListOpts struct {
	Source string // empty for all
	Limit  int
	Offset int
}

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

// Append stores one resolution.
func (r *Repo) Append(ctx context.Context, q answer.Question, res resolver.Resolution) (Observation, error) {
	aj, err := json.Marshal(res.Answer)
	if err != nil {
		return Observation{}, err
	}
	o := Observation{
		ID:        uuid.NewString(),
		Text:      q.Text,
		Code:      q.Code,
		Source:    res.Source,
		Answer:    aj,
		CreatedAt: time.Now().Unix(),
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO observations (id, question_text, code_snippet, source, answer_json, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		o.ID, o.Text, o.Code, o.Source, string(aj), o.CreatedAt)
	if err != nil {
		return Observation{}, fmt.Errorf("append observation: %w", err)
	}
	return o, nil
}

// List returns observations newest first.
func (r *Repo) List(ctx context.Context, opts ListOpts) ([]Observation, error) {
	if opts.Limit <= 0 || opts.Limit > 500 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	var (
		where string
		args  []any
	)
	if opts.Source != "" {
		where = "WHERE source=$1"
		args = append(args, opts.Source)
	}
	args = append(args, opts.Limit, opts.Offset)
	q := fmt.Sprintf(`SELECT id, question_text, code_snippet, source, answer_json, created_at
		FROM observations %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Observation{}
	for rows.Next() {
		var o Observation
		var aj string
		if err := rows.Scan(&o.ID, &o.Text, &o.Code, &o.Source, &aj, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Answer = json.RawMessage(aj)
		out = append(out, o)
	}
	return out, rows.Err()
}

// Unanswered lists distinct question texts nobody could answer, the
// candidates for the next answer-key revision.
func (r *Repo) Unanswered(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `SELECT question_text, MAX(created_at) AS last_seen
		FROM observations WHERE source=$1 GROUP BY question_text
		ORDER BY last_seen DESC, question_text LIMIT $2`, resolver.SourceNone, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var text string
		var seen int64
		if err := rows.Scan(&text, &seen); err != nil {
			return nil, err
		}
		out = append(out, strings.TrimSpace(text))
	}
	return out, rows.Err()
}
