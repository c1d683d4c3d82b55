package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mind-engage/quizsense/internal/storage"
)

const exportPage = 500

// Export writes every observation matching opts.Source as JSON lines to
// store and returns the stored key and the number of lines.
func (r *Repo) Export(ctx context.Context, store storage.BlobStore, opts ListOpts) (string, int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	n := 0
	for offset := 0; ; offset += exportPage {
		page, err := r.List(ctx, ListOpts{Source: opts.Source, Limit: exportPage, Offset: offset})
		if err != nil {
			return "", 0, err
		}
		for _, o := range page {
			if err := enc.Encode(o); err != nil {
				return "", 0, err
			}
		}
		n += len(page)
		if len(page) < exportPage {
			break
		}
	}
	name := fmt.Sprintf("observations/%s.jsonl", time.Now().UTC().Format("20060102T150405.000000000"))
	key, err := store.Put(name, &buf)
	if err != nil {
		return "", 0, fmt.Errorf("store export: %w", err)
	}
	return key, n, nil
}
