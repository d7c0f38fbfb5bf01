// Package main provides the entry point for the semdiff CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for semdiff.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "semdiff",
		Short: "Semantic diff between an original text and its rewrite",
		Long: `semdiff compares an original text with a machine-generated rewrite and
reports the semantic differences: changed facts, dropped caveats, shifted
tone, added claims. A language model does the reading; semdiff verifies
every reported change against the actual texts before trusting it.

The model API key is read from the environment variable named by
api_key_env in the config file (default: SEMDIFF_API_KEY). It is never
stored in the config file itself.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
//
// Exit codes: 0 when the comparison is safe (or the command has no
// verdict), 1 when the comparison found unsafe semantic changes, and 2
// for operational failures. Scripts can branch on the verdict without
// parsing output.
func Execute() {
	err := NewRootCmd().Execute()
	switch {
	case err == nil:
	case errors.Is(err, errUnsafeComparison):
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
