package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mind-engage/quizsense/internal/answer"
	"github.com/mind-engage/quizsense/internal/answerkey"
	"github.com/mind-engage/quizsense/internal/logging"
	"github.com/mind-engage/quizsense/internal/resolver"
)

type resolveOpts struct {
	keyPath  string
	codePath string
	asJSON   bool
	verbose  bool
}

func newResolveCmd() *cobra.Command {
	var o resolveOpts
	cmd := &cobra.Command{
		Use:   "resolve [flags] QUESTION...",
		Short: "Print the answer to a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, o, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&o.keyPath, "key", "", "answer-key document (json or yaml)")
	cmd.Flags().StringVar(&o.codePath, "code", "", "file holding the code shown with the question, - for stdin")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "print {answer, source} as JSON")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "log recognizer activity to stderr")
	return cmd
}

func runResolve(cmd *cobra.Command, o resolveOpts, text string) error {
	key := answerkey.Empty()
	if o.keyPath != "" {
		k, err := answerkey.LoadFile(o.keyPath)
		if err != nil {
			return fmt.Errorf("load key: %w", err)
		}
		key = k
	}
	code, err := readCode(cmd.InOrStdin(), o.codePath)
	if err != nil {
		return err
	}

	var opts []resolver.Option
	if o.verbose {
		logger, err := logging.New("debug", true)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
		opts = append(opts, resolver.WithLogger(logger))
	}

	res := resolver.New(key, opts...).Explain(answer.Question{Text: strings.TrimSpace(text), Code: code})
	out := cmd.OutOrStdout()
	if o.asJSON {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		return enc.Encode(res)
	}
	printAnswer(out, res.Answer)
	return nil
}

func readCode(stdin io.Reader, path string) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read code: %w", err)
	}
	return string(b), nil
}

func printAnswer(w io.Writer, a answer.Answer) {
	switch a.Kind() {
	case answer.KindSingle:
		fmt.Fprintln(w, a.Value())
	case answer.KindMultiple:
		for _, v := range a.Values() {
			fmt.Fprintln(w, v)
		}
	case answer.KindMapping:
		for i, p := range a.Pairs() {
			fmt.Fprintf(w, "%d. %s -> %s\n", i+1, p.Left, p.Right)
		}
	default:
		fmt.Fprintln(w, "(no answer)")
	}
}
