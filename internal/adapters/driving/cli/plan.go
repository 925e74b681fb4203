package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
)

var planUser string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a study plan from a learner's top knowledge gaps",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planUser, "user", "u", "", "learner identifier (required)")
	planCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	if gapService == nil {
		return errors.New("gap analysis service not configured")
	}

	plan, err := gapService.BuildImprovementPlan(cmd.Context(), planUser)
	if err != nil {
		return err
	}

	if plan.Status != domain.StatusSuccess || len(plan.Steps) == 0 {
		cmd.Printf("Não há lacunas suficientes para montar um plano para %s.\n", planUser)
		return nil
	}

	cmd.Printf("%s\n", plan.Title)
	cmd.Printf("Objetivo: %s\n\n", plan.OverallGoal)
	for _, step := range plan.Steps {
		cmd.Printf("%d. %s (%s)\n", step.Step, step.Topic, step.Category)
		cmd.Printf("   Meta: %s\n", step.Goal)
		cmd.Printf("   Abordagem: %s\n", step.Approach)
		cmd.Printf("   Tempo estimado: %s\n", step.EstimatedTime)
		if len(step.Resources) > 0 {
			cmd.Println("   Materiais:")
			for _, r := range step.Resources {
				cmd.Printf("     - %s (%s)\n", r.Title, r.Type)
			}
		}
	}
	cmd.Printf("\nConclusão recomendada: %s\n", plan.RecommendedCompletes.Format("02/01/2006"))
	return nil
}
