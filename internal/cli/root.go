// Package cli provides the command-line interface for chromacheck.
package cli

import (
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/chromacheck/chromacheck/internal/version"
)

var (
	// Global flags shared by all commands.
	flagVerbose bool
	flagDB      string
	flagSeed    string
)

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chromacheck",
		Short: "A colour-vision screening and filter-tuning tool",
		Long: `Chromacheck administers a perceptual screening test for red-green
colour-vision deficiency, scores the responses into a severity
classification, and searches a colour-correction filter's parameter
space for settings that improve discrimination accuracy.

Plates are generated deterministically from a seed, so any session or
tuning run can be reproduced exactly.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "path to the results database (omit to skip persistence)")
	rootCmd.PersistentFlags().StringVarP(&flagSeed, "seed", "s", "", "session seed (random when omitted)")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newTuneCmd())
	rootCmd.AddCommand(newPlateCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// versionCmd prints detailed version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including build date, commit hash, and Go version.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.String())
	},
}

// newLogger builds the command logger: Debug when verbose, Off otherwise.
func newLogger() hclog.Logger {
	level := hclog.Off
	if flagVerbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  "chromacheck",
		Level: level,
	})
}
