package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is the semantic version of the CLI.
var Version = "0.1.0-dev"

// exitDiffer is the status of `equal` when the trees differ; any other
// failure exits with exitError.
const (
	exitDiffer = 1
	exitError  = 2
)

// newRootCmd assembles the command tree. Tests build a fresh one per case so
// flag state does not leak between them.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "csgnorm",
		Short:         "Normalize constructive solid geometry trees",
		Long:          `csgnorm evaluates CSG programs and rewrites them into a canonical form`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newNormalizeCmd())
	rootCmd.AddCommand(newRewriteCmd())
	rootCmd.AddCommand(newEqualCmd())
	rootCmd.AddCommand(newDecodeCmd())

	rootCmd.PersistentFlags().String("config", "", "TOML file selecting the rewrite rules and pass budget")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace|debug|info|warn|error), default from $CSG_LOG_LEVEL")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	return rootCmd
}

func main() {
	err := newRootCmd().Execute()
	switch {
	case err == nil:
	case errors.Is(err, errDiffer):
		os.Exit(exitDiffer)
	default:
		fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		os.Exit(exitError)
	}
}
