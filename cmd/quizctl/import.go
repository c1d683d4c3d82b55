package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mind-engage/quizsense/internal/answerkey"
	"github.com/mind-engage/quizsense/internal/config"
	"github.com/mind-engage/quizsense/internal/db"
	"github.com/mind-engage/quizsense/internal/keystore"
	"github.com/mind-engage/quizsense/internal/qti"
)

func newImportCmd() *cobra.Command {
	cfg := config.Load()
	var name, by string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Store an answer-key document or QTI package; the gateway serves the newest one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(path)
			}
			if by == "" {
				if by = os.Getenv("USER"); by == "" {
					by = "quizctl"
				}
			}
			format := answerkey.FormatFromPath(path)
			if strings.EqualFold(filepath.Ext(path), ".zip") {
				var skipped []qti.Skipped
				if doc, skipped, err = qti.Convert(bytes.NewReader(doc), int64(len(doc))); err != nil {
					return err
				}
				for _, s := range skipped {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipped item %s: %s\n", s.ID, s.Reason)
				}
				format = answerkey.FormatJSON
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
			if err != nil {
				return err
			}
			defer dbh.Close()

			rec, _, err := keystore.NewSQLStore(dbh).Put(ctx, keystore.Upload{
				Name:       name,
				Format:     format,
				Document:   doc,
				UploadedBy: by,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%s, %d questions)\n", rec.ID, rec.Name, rec.Entries)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "sqlite or postgres")
	cmd.Flags().StringVar(&cfg.DBDSN, "dsn", cfg.DBDSN, "database DSN")
	cmd.Flags().StringVar(&name, "name", "", "label for the stored key (default: file name)")
	cmd.Flags().StringVar(&by, "by", "", "recorded as the uploader (default: $USER)")
	return cmd
}
