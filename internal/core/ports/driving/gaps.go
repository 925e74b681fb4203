package driving

import (
	"context"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
)

// GapAnalyzer mines interaction history for knowledge gaps.
type GapAnalyzer interface {
	// AnalyzeProgress builds a full gap report for a learner. A learner
	// with no interactions yields StatusInsufficientData and no gaps.
	AnalyzeProgress(ctx context.Context, userID string) (*domain.GapReport, error)

	// BuildImprovementPlan turns the top gaps into an actionable plan.
	BuildImprovementPlan(ctx context.Context, userID string) (*domain.ImprovementPlan, error)

	// UpdateStrengthsWeaknesses refreshes the profile's strength and
	// weakness lists from the current analysis and persists them.
	UpdateStrengthsWeaknesses(ctx context.Context, userID string) error
}
