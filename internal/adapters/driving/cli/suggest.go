package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
)

var (
	suggestLevel string
	suggestLimit int
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <topic>",
	Short: "Suggest indexed content related to a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSuggest,
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestLevel, "level", "l", "", "proficiency level (beginner, intermediate, advanced)")
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 5, "maximum number of suggestions")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if respondService == nil {
		return errors.New("responder service not configured")
	}

	query := strings.Join(args, " ")
	related, err := respondService.SuggestRelated(cmd.Context(), query, domain.ParseLevel(suggestLevel), suggestLimit)
	if err != nil {
		return err
	}
	if len(related) == 0 {
		cmd.Printf("Nenhuma sugestão encontrada para %q.\n", query)
		return nil
	}

	cmd.Printf("Sugestões para %q:\n", query)
	for _, r := range related {
		line := "  - " + r.Title
		if r.Type != "" {
			line += " (" + string(r.Type) + ")"
		}
		cmd.Println(line)
		if r.Preview != "" {
			cmd.Printf("    %s\n", r.Preview)
		}
	}
	return nil
}
