package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var (
	feedbackUser  string
	feedbackQuery string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <text>",
	Short: "Record feedback on the learner's latest answer",
	Long: `Feedback attaches free-text feedback (for example "útil" or
"confuso") to the learner's most recent exchange for the given question.
Feedback drives gap analysis and, when enabled, reranker training.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFeedback,
}

func init() {
	feedbackCmd.Flags().StringVarP(&feedbackUser, "user", "u", "", "learner identifier (required)")
	feedbackCmd.Flags().StringVarP(&feedbackQuery, "query", "q", "", "the question the feedback refers to")
	feedbackCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedback(cmd *cobra.Command, args []string) error {
	if respondService == nil {
		return errors.New("responder service not configured")
	}

	text := strings.Join(args, " ")
	if err := respondService.RecordFeedback(cmd.Context(), feedbackUser, feedbackQuery, "", text); err != nil {
		return err
	}
	cmd.Println("Feedback registrado. Obrigado!")
	return nil
}
