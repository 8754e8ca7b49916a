package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/npratt/mindmap/internal/exec"
)

var version = "dev"

// newRootCmd builds the command tree around a.
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mindmap",
		Short: "Explore learning mind-maps",
		Long: `mindmap renders learning mind-maps as interactive, progressively
disclosed trees. Only the path you have drilled into and one level of
children under it are shown, so large topics stay readable.

Mind-maps come from JSON files, from the learning backend, or from a
generator command, and can be explored in the terminal, exported to PNG or
SVG, or served to web clients over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.bindFlags(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolP(FlagVerbose, "v", false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().String(FlagConfig, "", "Config file path (default: .mindmap/config.yaml)")
	rootCmd.PersistentFlags().String(FlagLogFile, "", "Debug log path used while the viewer runs")
	rootCmd.PersistentFlags().String(FlagStateFile, "", "Viewer preferences file")
	rootCmd.PersistentFlags().String(FlagEventsFile, "", "Session event log (JSON lines)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mindmap %s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(a.newViewCmd())
	rootCmd.AddCommand(a.newExportCmd())
	rootCmd.AddCommand(a.newServeCmd())
	rootCmd.AddCommand(a.newFetchCmd())
	rootCmd.AddCommand(a.newEventsCmd())
	rootCmd.AddCommand(a.newInitCmd())
	return rootCmd
}

// newViper creates the viper instance with MINDMAP_* environment lookup.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("MINDMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

func main() {
	logLevel := &slog.LevelVar{}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	a := &app{
		v:        newViper(),
		logger:   logger,
		logLevel: logLevel,
		runner:   exec.NewExecRunner(),
	}

	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
