package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and index new or changed materials",
	Long: `Watch monitors the directory recursively and indexes files as they
appear or change, debouncing rapid rewrites. Without an argument it watches
the configured materials directory. It runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchService == nil {
		return errors.New("watch service not configured")
	}
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		cmd.Println("Watching the materials directory (Ctrl+C to stop)")
	} else {
		cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	}
	return watchService.Watch(dir)
}
