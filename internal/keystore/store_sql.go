// Package keystore keeps uploaded answer-key documents. The newest one is
// the key the gateway serves.
package keystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/quizsense/internal/answerkey"
)

var ErrNotFound = errors.New("answer key not found")

type Record struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Format     answerkey.Format `json:"format"`
	Document   []byte           `json:"-"`
	Entries    int              `json:"entries"`
	UploadedBy string           `json:"uploaded_by"`
	CreatedAt  int64            `json:"created_at"` // unix nanoseconds
}

// Upload is a document offered for storage. UploadedBy is the token
// subject for HTTP uploads and a tool name otherwise.
type Upload struct {
	Name       string
	Format     answerkey.Format
	Document   []byte
	UploadedBy string
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Put parses the document and stores it only if it is a valid answer key.
// The parsed key is returned so callers can start serving it right away.
func (s *SQLStore) Put(ctx context.Context, up Upload) (Record, *answerkey.Key, error) {
	key, err := answerkey.Parse(up.Document, up.Format)
	if err != nil {
		return Record{}, nil, err
	}
	format := up.Format
	if format == "" {
		format = answerkey.FormatJSON
	}
	rec := Record{
		ID:         uuid.NewString(),
		Name:       up.Name,
		Format:     format,
		Document:   up.Document,
		Entries:    key.Len(),
		UploadedBy: up.UploadedBy,
		CreatedAt:  time.Now().UnixNano(),
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO answer_keys (id,name,format,document,entries,uploaded_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rec.ID, rec.Name, string(rec.Format), rec.Document, rec.Entries, rec.UploadedBy, rec.CreatedAt)
	if err != nil {
		return Record{}, nil, fmt.Errorf("insert answer key: %w", err)
	}
	return rec, key, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,name,format,document,entries,uploaded_by,created_at
		FROM answer_keys WHERE id=$1`, id)
	return scanRecord(row)
}

func (s *SQLStore) Latest(ctx context.Context) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,name,format,document,entries,uploaded_by,created_at
		FROM answer_keys ORDER BY created_at DESC LIMIT 1`)
	return scanRecord(row)
}

// LoadLatest parses the newest stored document.
func (s *SQLStore) LoadLatest(ctx context.Context) (*answerkey.Key, Record, error) {
	rec, err := s.Latest(ctx)
	if err != nil {
		return nil, Record{}, err
	}
	key, err := answerkey.Parse(rec.Document, rec.Format)
	if err != nil {
		return nil, Record{}, fmt.Errorf("stored key %s: %w", rec.ID, err)
	}
	return key, rec, nil
}

// List returns metadata of stored keys, newest first, without documents.
func (s *SQLStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,format,entries,uploaded_by,created_at
		FROM answer_keys ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var r Record
		var format string
		if err := rows.Scan(&r.ID, &r.Name, &format, &r.Entries, &r.UploadedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Format = answerkey.Format(format)
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRecord(row *sql.Row) (Record, error) {
	var r Record
	var format string
	if err := row.Scan(&r.ID, &r.Name, &format, &r.Document, &r.Entries, &r.UploadedBy, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	r.Format = answerkey.Format(format)
	return r, nil
}
