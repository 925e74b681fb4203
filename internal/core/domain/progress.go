package domain

import (
	"sort"
	"time"
)

// UserInteraction records a single query/response exchange. Feedback is
// free text supplied after the fact and classified downstream by keyword
// membership.
type UserInteraction struct {
	ID        string
	Query     string
	Response  string
	Timestamp time.Time
	Feedback  string
}

// UserProgress owns a learner's profile and the append-only interaction
// history. It is created on first interaction and mutated only by appending
// interactions or replacing profile fields.
type UserProgress struct {
	UserID       string
	Profile      UserProfile
	Interactions []UserInteraction
}

// NewUserProgress creates an empty progress record with default profile.
func NewUserProgress(userID string) *UserProgress {
	return &UserProgress{
		UserID:  userID,
		Profile: DefaultProfile(),
	}
}

// AddInteraction appends an exchange to the history.
func (p *UserProgress) AddInteraction(i UserInteraction) {
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
	p.Interactions = append(p.Interactions, i)
}

// LastInteractionTime returns the timestamp of the most recent interaction.
// The zero time is returned for an empty history.
func (p *UserProgress) LastInteractionTime() time.Time {
	var last time.Time
	for _, i := range p.Interactions {
		if i.Timestamp.After(last) {
			last = i.Timestamp
		}
	}
	return last
}

// RecentInteractions returns up to limit interactions, most recent first.
func (p *UserProgress) RecentInteractions(limit int) []UserInteraction {
	recent := make([]UserInteraction, len(p.Interactions))
	copy(recent, p.Interactions)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

// EngagementMetrics summarizes how actively a learner uses the system.
type EngagementMetrics struct {
	TotalInteractions  int
	AvgPerDay          float64
	TopicsExplored     []string
	FeedbackRatio      float64
	LastActiveDaysAgo  int
	EngagementScore    int
	HasAnyInteractions bool
}

// Engagement computes usage metrics over the full history. topicsOf extracts
// topical keywords from a query; it is injected so the stop-word list lives
// with the services layer.
func (p *UserProgress) Engagement(now time.Time, topicsOf func(string) []string) EngagementMetrics {
	m := EngagementMetrics{}
	total := len(p.Interactions)
	if total == 0 {
		return m
	}
	m.HasAnyInteractions = true
	m.TotalInteractions = total

	first, last := p.Interactions[0].Timestamp, p.Interactions[0].Timestamp
	withFeedback := 0
	topicSet := map[string]struct{}{}
	for _, i := range p.Interactions {
		if i.Timestamp.Before(first) {
			first = i.Timestamp
		}
		if i.Timestamp.After(last) {
			last = i.Timestamp
		}
		if i.Feedback != "" {
			withFeedback++
		}
		for _, t := range topicsOf(i.Query) {
			if _, seen := topicSet[t]; !seen && len(m.TopicsExplored) < 10 {
				m.TopicsExplored = append(m.TopicsExplored, t)
			}
			topicSet[t] = struct{}{}
		}
	}

	days := int(last.Sub(first).Hours() / 24)
	if days < 1 {
		days = 1
	}
	if total >= 2 {
		m.AvgPerDay = float64(total) / float64(days)
	} else {
		m.AvgPerDay = float64(total)
	}

	m.FeedbackRatio = float64(withFeedback) / float64(total)
	m.LastActiveDaysAgo = int(now.Sub(last).Hours() / 24)

	// Interaction volume contributes up to 60 points, feedback up to 40.
	interactionScore := total * 5
	if interactionScore > 60 {
		interactionScore = 60
	}
	m.EngagementScore = interactionScore + int(m.FeedbackRatio*40)

	return m
}
