package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driving"
)

var (
	askUser         string
	askLevel        string
	askFormat       string
	askConversation string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question over the indexed materials",
	Long: `Ask retrieves the most relevant indexed documents for the question
and composes an answer with excerpts adapted to the learner's level and
preferred format. With --user the exchange is recorded so future analysis
can identify learning gaps.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askUser, "user", "u", "", "learner identifier for personalization")
	askCmd.Flags().StringVarP(&askLevel, "level", "l", "", "proficiency level (beginner, intermediate, advanced)")
	askCmd.Flags().StringVarP(&askFormat, "format", "f", "", "preferred content format (text, video, image, audio)")
	askCmd.Flags().StringVar(&askConversation, "conversation", "", "conversation identifier (defaults to user)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if respondService == nil {
		return errors.New("responder service not configured")
	}

	query := strings.Join(args, " ")
	opts := driving.ResponseOptions{
		UserID:         askUser,
		ConversationID: askConversation,
	}
	if askLevel != "" {
		opts.Level = domain.ParseLevel(askLevel)
	}
	if askFormat != "" {
		opts.PreferredFormat = domain.ParseFormat(askFormat)
	}

	answer, err := respondService.GenerateResponse(cmd.Context(), query, opts)
	if err != nil {
		return err
	}
	cmd.Println(answer)
	return nil
}
