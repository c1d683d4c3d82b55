// Command quizctl resolves quiz questions and manages answer-key documents
// from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "quizctl",
		Short:         "Resolve quiz questions and manage answer keys",
		SilenceUsage: true,
	}
	root.AddCommand(newResolveCmd(), newCheckCmd(), newImportCmd())
	return root
}
