// Package cli implements the command line interface. Commands hold no
// business logic; they call the driving ports and format the output.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tutoria-labs/tutoria/internal/core/ports/driving"
	"github.com/tutoria-labs/tutoria/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by main before Execute.
var (
	ingestService  driving.Ingestor
	respondService driving.Responder
	gapService     driving.GapAnalyzer

	// watchService starts the materials watcher; wired by main so the
	// CLI package stays free of adapter construction.
	watchService WatchStarter
)

// WatchStarter is the watch command's view of the filesystem watcher.
// An empty dir means the configured materials directory.
type WatchStarter interface {
	Watch(dir string) error
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "tutoria",
	Short: "Adaptive study assistant over your local materials",
	Long: `tutoria indexes study materials (text, PDF, JSON, video, audio and
images) and answers questions with excerpts sized to your level. It tracks
your interactions to surface learning gaps and build study plans.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// SetServices injects the service implementations used by the commands.
func SetServices(ingestor driving.Ingestor, responder driving.Responder, analyzer driving.GapAnalyzer, watcher WatchStarter) {
	ingestService = ingestor
	respondService = responder
	gapService = analyzer
	watchService = watcher
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, so commands stop on
// shutdown signals.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
