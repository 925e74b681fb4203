package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Index a file or directory of study materials",
	Long: `Index parses the given file, or walks the given directory, and adds
every supported document to the retrieval index. Unsupported and failed files
are reported but never abort the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		if err := ingestService.IngestFile(cmd.Context(), path); err != nil {
			return err
		}
		cmd.Printf("Indexed %s\n", path)
		return nil
	}

	report, err := ingestService.IngestDirectory(cmd.Context(), path)
	if err != nil {
		return err
	}

	cmd.Printf("Files visited:  %d\n", report.TotalFiles)
	cmd.Printf("Indexed:        %d\n", report.IndexedCount)
	if len(report.Unsupported) > 0 {
		cmd.Printf("Unsupported:    %d\n", len(report.Unsupported))
		for _, f := range report.Unsupported {
			cmd.Printf("  - %s\n", f)
		}
	}
	if len(report.Failed) > 0 {
		cmd.Printf("With problems:  %d\n", len(report.Failed))
		for _, f := range report.Failed {
			cmd.Printf("  - %s\n", f)
		}
	}
	return nil
}
