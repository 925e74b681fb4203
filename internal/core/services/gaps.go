package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driving"
	"github.com/tutoria-labs/tutoria/internal/logger"
)

const (
	// minInteractions is the history size below which no analysis runs.
	minInteractions = 3

	// gapThreshold is the combined score at which a topic becomes a gap.
	gapThreshold = 0.6

	// Score weights. Negative feedback dominates because it is the most
	// direct signal of a misunderstanding.
	weightFrequency = 0.3
	weightFeedback  = 0.5
	weightTime      = 0.2

	// defaultDwell stands in when the gap to the next interaction is
	// implausibly long or the interaction is the last one.
	defaultDwell = 5 * time.Minute

	// maxDwell caps how long a single interaction can count toward a
	// topic; longer gaps mean the learner walked away.
	maxDwell = 30 * time.Minute

	maxPlanSteps         = 3
	maxStepResources     = 3
	maxListedTopics      = 5
	planCompletionWindow = 14 * 24 * time.Hour
)

// Ensure GapAnalyzerService implements the interface.
var _ driving.GapAnalyzer = (*GapAnalyzerService)(nil)

// GapAnalyzerService mines a learner's interaction history for topics that
// show repeated queries, negative feedback, or unusual time cost.
type GapAnalyzerService struct {
	progress driven.ProgressStore
	index    driven.DocumentIndex
	vocab    *Vocabulary
	now      func() time.Time
}

// NewGapAnalyzerService creates a gap analyzer. The index is used to attach
// study resources to improvement plans and may be nil.
func NewGapAnalyzerService(progress driven.ProgressStore, index driven.DocumentIndex, vocab *Vocabulary) *GapAnalyzerService {
	return &GapAnalyzerService{
		progress: progress,
		index:    index,
		vocab:    vocab,
		now:      time.Now,
	}
}

// topicStats accumulates per-topic evidence across the history.
type topicStats struct {
	frequency int
	negative  int
	feedback  int
	dwell     time.Duration
}

// AnalyzeProgress builds the full gap report for a learner.
func (s *GapAnalyzerService) AnalyzeProgress(ctx context.Context, userID string) (*domain.GapReport, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", domain.ErrInvalidInput)
	}

	report := &domain.GapReport{
		UserID:     userID,
		AnalyzedAt: s.now(),
	}

	progress, err := s.progress.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		report.Status = domain.StatusInsufficientData
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading progress: %w", err)
	}
	if len(progress.Interactions) < minInteractions {
		report.Status = domain.StatusInsufficientData
		return report, nil
	}

	report.Engagement = progress.Engagement(s.now(), s.vocab.Topics)
	report.OverallProgress = s.overallProgress(progress)

	stats := s.collectStats(progress)
	report.Gaps = s.scoreGaps(stats)
	report.Strengths = strengthsFrom(stats)
	report.Weaknesses = weaknessesFrom(report.Gaps)
	report.Suggestions = s.suggestionsFor(report.Gaps, progress.Profile.Level)

	if len(report.Gaps) == 0 {
		report.Status = domain.StatusNoGaps
	} else {
		report.Status = domain.StatusSuccess
	}
	logger.Debug("Analyzed %d interactions for %s: %d gaps", len(progress.Interactions), userID, len(report.Gaps))
	return report, nil
}

// overallProgress scores the learner's trajectory between 0 and 1. It blends
// interaction volume, topic diversity, the positive feedback ratio and the
// trend over the five most recent interactions. Learners without feedback sit
// at the neutral 0.5 on the feedback factors.
func (s *GapAnalyzerService) overallProgress(progress *domain.UserProgress) float64 {
	total := len(progress.Interactions)

	volume := float64(total) / 100
	if volume > 1 {
		volume = 1
	}

	topics := map[string]struct{}{}
	for _, i := range progress.Interactions {
		for _, t := range s.vocab.Topics(i.Query) {
			topics[t] = struct{}{}
		}
	}
	diversity := float64(len(topics)) / 20
	if diversity > 1 {
		diversity = 1
	}

	feedback := positiveRatio(progress.Interactions, s.vocab)

	trend := 0.5
	if total >= 5 {
		trend = positiveRatio(progress.Interactions[total-5:], s.vocab)
	}

	score := volume*0.3 + diversity*0.2 + feedback*0.25 + trend*0.25
	return math.Round(score*100) / 100
}

// positiveRatio returns the share of positive feedback among rated
// interactions, or the neutral 0.5 when none carry feedback.
func positiveRatio(interactions []domain.UserInteraction, vocab *Vocabulary) float64 {
	rated, positive := 0, 0
	for _, i := range interactions {
		if i.Feedback == "" {
			continue
		}
		rated++
		if vocab.ClassifyFeedback(i.Feedback) == domain.SentimentPositive {
			positive++
		}
	}
	if rated == 0 {
		return 0.5
	}
	return float64(positive) / float64(rated)
}

// BuildImprovementPlan turns the top gaps into an actionable study plan.
func (s *GapAnalyzerService) BuildImprovementPlan(ctx context.Context, userID string) (*domain.ImprovementPlan, error) {
	report, err := s.AnalyzeProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	plan := &domain.ImprovementPlan{
		ID:                   uuid.NewString(),
		UserID:               userID,
		Status:               report.Status,
		CreatedAt:            now,
		RecommendedCompletes: now.Add(planCompletionWindow),
	}
	if report.Status != domain.StatusSuccess {
		return plan, nil
	}

	gaps := report.Gaps
	if len(gaps) > maxPlanSteps {
		gaps = gaps[:maxPlanSteps]
	}

	level := domain.DefaultProfile().Level
	if progress, err := s.progress.Get(ctx, userID); err == nil {
		level = progress.Profile.Level
	}

	topics := make([]string, 0, len(gaps))
	for i, gap := range gaps {
		topics = append(topics, gap.Topic)
		plan.Steps = append(plan.Steps, domain.PlanStep{
			Step:          i + 1,
			Topic:         gap.Topic,
			Category:      gap.Category,
			Goal:          fmt.Sprintf("Dominar os fundamentos de %s", gap.Topic),
			TargetLevel:   adjustedLevel(gap.Severity, level),
			Approach:      approachFor(gap.Severity, gap.Topic),
			EstimatedTime: estimatedTime(gap.Severity),
			Resources:     s.resourcesFor(ctx, gap.Topic),
		})
	}

	plan.Title = fmt.Sprintf("Plano de estudo: %s", strings.Join(topics, ", "))
	plan.OverallGoal = fmt.Sprintf("Reforçar %d tópico(s) com sinais de dificuldade nas próximas duas semanas", len(plan.Steps))
	return plan, nil
}

// UpdateStrengthsWeaknesses refreshes the profile lists from the current
// analysis and persists them.
func (s *GapAnalyzerService) UpdateStrengthsWeaknesses(ctx context.Context, userID string) error {
	report, err := s.AnalyzeProgress(ctx, userID)
	if err != nil {
		return err
	}
	if report.Status == domain.StatusInsufficientData {
		return nil
	}

	progress, err := s.progress.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading progress: %w", err)
	}
	progress.Profile.Strengths = report.Strengths
	progress.Profile.Weaknesses = report.Weaknesses
	if err := s.progress.Save(ctx, progress); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// collectStats walks the history in timestamp order, attributing frequency,
// feedback sentiment, and dwell time to each topic of each query. Dwell is
// the gap to the next interaction, split evenly across the query's topics;
// implausibly long gaps and the final interaction count a default instead.
func (s *GapAnalyzerService) collectStats(progress *domain.UserProgress) map[string]*topicStats {
	ordered := make([]domain.UserInteraction, len(progress.Interactions))
	copy(ordered, progress.Interactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	stats := make(map[string]*topicStats)
	for i, interaction := range ordered {
		topics := s.vocab.Topics(interaction.Query)
		if len(topics) == 0 {
			continue
		}

		dwell := defaultDwell
		if i+1 < len(ordered) {
			gap := ordered[i+1].Timestamp.Sub(interaction.Timestamp)
			if gap > 0 && gap <= maxDwell {
				dwell = gap
			}
		}
		perTopic := dwell / time.Duration(len(topics))

		sentiment := s.vocab.ClassifyFeedback(interaction.Feedback)
		for _, topic := range topics {
			st, ok := stats[topic]
			if !ok {
				st = &topicStats{}
				stats[topic] = st
			}
			st.frequency++
			st.dwell += perTopic
			if interaction.Feedback != "" {
				st.feedback++
				if sentiment == domain.SentimentNegative {
					st.negative++
				}
			}
		}
	}
	return stats
}

// scoreGaps combines the per-topic evidence into scores and keeps topics at
// or above the threshold, most severe first.
func (s *GapAnalyzerService) scoreGaps(stats map[string]*topicStats) []domain.Gap {
	maxFreq, maxDwellSeen := 0, time.Duration(0)
	for _, st := range stats {
		if st.frequency > maxFreq {
			maxFreq = st.frequency
		}
		if st.dwell > maxDwellSeen {
			maxDwellSeen = st.dwell
		}
	}
	if maxFreq == 0 {
		return nil
	}

	var gaps []domain.Gap
	for topic, st := range stats {
		freqNorm := float64(st.frequency) / float64(maxFreq)
		negRatio := 0.0
		if st.feedback > 0 {
			negRatio = float64(st.negative) / float64(st.feedback)
		}
		timeNorm := 0.0
		if maxDwellSeen > 0 {
			timeNorm = float64(st.dwell) / float64(maxDwellSeen)
		}

		score := weightFrequency*freqNorm + weightFeedback*negRatio + weightTime*timeNorm
		if score < gapThreshold {
			continue
		}
		gaps = append(gaps, domain.Gap{
			Topic:                 topic,
			Category:              s.vocab.CategoryOf(topic),
			Score:                 score,
			Severity:              domain.SeverityForScore(score),
			Frequency:             st.frequency,
			NegativeFeedbackRatio: negRatio,
			TimeIntensity:         timeNorm,
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Score != gaps[j].Score {
			return gaps[i].Score > gaps[j].Score
		}
		return gaps[i].Topic < gaps[j].Topic
	})
	return gaps
}

// strengthsFrom lists topics the learner revisits with mostly positive
// feedback: at least three interactions and at least seventy percent of
// the rated ones positive.
func strengthsFrom(stats map[string]*topicStats) []string {
	type strength struct {
		topic    string
		positive int
	}
	var candidates []strength
	for topic, st := range stats {
		if st.frequency < minInteractions || st.feedback == 0 {
			continue
		}
		positive := st.feedback - st.negative
		if float64(positive)/float64(st.feedback) >= 0.7 {
			candidates = append(candidates, strength{topic: topic, positive: positive})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].positive != candidates[j].positive {
			return candidates[i].positive > candidates[j].positive
		}
		return candidates[i].topic < candidates[j].topic
	})

	var out []string
	for _, c := range candidates {
		out = append(out, c.topic)
		if len(out) >= maxListedTopics {
			break
		}
	}
	return out
}

// weaknessesFrom lists the medium and high severity gap topics.
func weaknessesFrom(gaps []domain.Gap) []string {
	var out []string
	for _, gap := range gaps {
		if gap.Severity == domain.SeverityLow {
			continue
		}
		out = append(out, gap.Topic)
		if len(out) >= maxListedTopics {
			break
		}
	}
	return out
}

func (s *GapAnalyzerService) suggestionsFor(gaps []domain.Gap, level domain.Level) []domain.GapSuggestion {
	var out []domain.GapSuggestion
	for _, gap := range gaps {
		out = append(out, domain.GapSuggestion{
			Topic:       gap.Topic,
			Title:       fmt.Sprintf("Revisar %s", gap.Topic),
			Description: approachFor(gap.Severity, gap.Topic),
			Category:    gap.Category,
			Severity:    gap.Severity,
			Level:       adjustedLevel(gap.Severity, level),
		})
	}
	return out
}

// resourcesFor finds up to three indexed documents to study for a topic.
func (s *GapAnalyzerService) resourcesFor(ctx context.Context, topic string) []domain.ResourceRef {
	if s.index == nil {
		return nil
	}
	docs, err := s.index.Search(ctx, topic, maxStepResources)
	if err != nil {
		logger.Debug("No resources found for %s: %v", topic, err)
		return nil
	}
	var out []domain.ResourceRef
	for _, doc := range docs {
		out = append(out, domain.ResourceRef{
			ID:      doc.ID,
			Title:   doc.Title(),
			Type:    doc.DocType,
			Preview: preview(doc.Content),
		})
	}
	return out
}

// adjustedLevel targets recommendations by gap severity: a severe gap is
// retaken from the basics, a medium gap stays at the learner's own level
// and a light gap is pushed toward advanced material as a challenge.
func adjustedLevel(severity domain.Severity, level domain.Level) domain.Level {
	switch severity {
	case domain.SeverityHigh:
		return domain.LevelBeginner
	case domain.SeverityMedium:
		return level
	default:
		return domain.LevelAdvanced
	}
}

func approachFor(severity domain.Severity, topic string) string {
	switch severity {
	case domain.SeverityHigh:
		return fmt.Sprintf("Retome %s do início com material introdutório e peça exemplos passo a passo", topic)
	case domain.SeverityMedium:
		return fmt.Sprintf("Revise os pontos de %s que geraram dúvida e pratique com exercícios guiados", topic)
	default:
		return fmt.Sprintf("Consolide %s com leituras complementares e um pequeno projeto prático", topic)
	}
}

func estimatedTime(severity domain.Severity) string {
	switch severity {
	case domain.SeverityHigh:
		return "5-10 horas"
	case domain.SeverityMedium:
		return "3-5 horas"
	default:
		return "1-2 horas"
	}
}
