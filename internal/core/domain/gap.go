package domain

import "time"

// Severity bands a continuous gap score into a discrete classification.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// rank orders severities for sorting, highest first.
func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// MoreSevere reports whether s outranks other.
func (s Severity) MoreSevere(other Severity) bool {
	return s.rank() > other.rank()
}

// SeverityForScore bands a combined gap score. Callers only pass scores at
// or above the gap threshold.
func SeverityForScore(score float64) Severity {
	switch {
	case score > 0.8:
		return SeverityHigh
	case score > 0.7:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Gap is a topic where a learner shows elevated frequency, negative
// feedback, or time cost.
type Gap struct {
	Topic                 string
	Category              string
	Score                 float64
	Severity              Severity
	Frequency             int
	NegativeFeedbackRatio float64
	TimeIntensity         float64
}

// Analysis status values.
const (
	StatusSuccess          = "success"
	StatusInsufficientData = "insufficient_data"
	StatusNoGaps           = "no_gaps_identified"
)

// GapReport is the full output of a progress analysis.
type GapReport struct {
	UserID          string
	Status          string
	AnalyzedAt      time.Time
	OverallProgress float64
	Engagement      EngagementMetrics
	Gaps            []Gap
	Suggestions     []GapSuggestion
	Strengths       []string
	Weaknesses      []string
}

// GapSuggestion is a human-readable improvement hint attached to a report.
type GapSuggestion struct {
	Topic       string
	Title       string
	Description string
	Category    string
	Severity    Severity
	Level       Level
}

// ResourceRef points at an indexed document recommended for a plan step.
type ResourceRef struct {
	ID      string
	Title   string
	Type    DocType
	Preview string
}

// PlanStep is one actionable entry of an improvement plan.
type PlanStep struct {
	Step          int
	Topic         string
	Category      string
	Goal          string
	TargetLevel   Level
	Approach      string
	EstimatedTime string
	Resources     []ResourceRef
}

// ImprovementPlan is a ranked set of steps addressing the top gaps.
type ImprovementPlan struct {
	ID                   string
	UserID               string
	Status               string
	CreatedAt            time.Time
	RecommendedCompletes time.Time
	Title                string
	OverallGoal          string
	Steps                []PlanStep
}

// Sentiment is the three-valued classification of free-text feedback.
type Sentiment int

const (
	SentimentNeutral Sentiment = iota
	SentimentPositive
	SentimentNegative
)

// RelatedContent is a pointer to indexed material related to a query,
// surfaced by the suggestion operations.
type RelatedContent struct {
	ID      string
	Title   string
	Type    DocType
	Preview string
	Source  string
}
