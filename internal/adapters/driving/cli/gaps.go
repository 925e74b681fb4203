package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
)

var gapsUser string

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Analyze a learner's interaction history for knowledge gaps",
	Long: `Gaps mines the learner's recorded questions and feedback for topics
that show repeated struggle, and prints the gaps ranked by severity together
with engagement metrics, strengths and suggestions.`,
	RunE: runGaps,
}

func init() {
	gapsCmd.Flags().StringVarP(&gapsUser, "user", "u", "", "learner identifier (required)")
	gapsCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(gapsCmd)
}

func runGaps(cmd *cobra.Command, _ []string) error {
	if gapService == nil {
		return errors.New("gap analysis service not configured")
	}

	report, err := gapService.AnalyzeProgress(cmd.Context(), gapsUser)
	if err != nil {
		return err
	}

	switch report.Status {
	case domain.StatusInsufficientData:
		cmd.Printf("Ainda não há interações suficientes para analisar %s. Continue estudando!\n", gapsUser)
		return nil
	case domain.StatusNoGaps:
		cmd.Printf("Nenhuma lacuna identificada para %s. Bom trabalho!\n", gapsUser)
	default:
		cmd.Printf("Análise de progresso de %s\n\n", gapsUser)
		cmd.Println("Lacunas identificadas:")
		for _, g := range report.Gaps {
			cmd.Printf("  %-20s %s (%.0f%%)\n", g.Topic, severityLabel(g.Severity), g.Score*100)
		}
	}

	e := report.Engagement
	cmd.Printf("\nInterações: %d  |  Média por dia: %.1f  |  Engajamento: %d/100\n",
		e.TotalInteractions, e.AvgPerDay, e.EngagementScore)
	if len(report.Strengths) > 0 {
		cmd.Printf("Pontos fortes: %s\n", strings.Join(report.Strengths, ", "))
	}
	if len(report.Weaknesses) > 0 {
		cmd.Printf("Pontos a melhorar: %s\n", strings.Join(report.Weaknesses, ", "))
	}
	if len(report.Suggestions) > 0 {
		cmd.Println("\nSugestões:")
		for _, s := range report.Suggestions {
			cmd.Printf("  - %s: %s\n", s.Title, s.Description)
		}
	}
	cmd.Printf("\nProgresso geral: %.0f%%\n", report.OverallProgress*100)
	return nil
}

func severityLabel(s domain.Severity) string {
	switch s {
	case domain.SeverityHigh:
		return "alta"
	case domain.SeverityMedium:
		return "média"
	default:
		return "baixa"
	}
}
