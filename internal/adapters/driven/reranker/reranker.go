// Package reranker provides the per-learner candidate scorer: a small
// logistic model over word presence, trained from rated interactions.
package reranker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driven"
)

// Training hyperparameters. The model is tiny; a handful of epochs over
// a learner's history is enough and keeps Train cheap to call after
// every piece of feedback.
const (
	minRatedInteractions = 3
	epochs               = 20
	learningRate         = 0.1
)

// Ensure Personalized implements the interface.
var _ driven.Reranker = (*Personalized)(nil)

// model holds per-term weights for one learner.
type model struct {
	weights map[string]float64
	bias    float64
}

// Personalized scores documents per learner. Models train lazily from the
// learner's rated interactions; learners without enough feedback are
// reported unavailable and keep the index's native ordering.
type Personalized struct {
	progress driven.ProgressStore
	classify func(string) domain.Sentiment

	mu     sync.RWMutex
	models map[string]*model
}

// New creates a reranker. classify maps feedback text to a sentiment and
// is injected so the locale word lists stay in the services layer.
func New(progress driven.ProgressStore, classify func(string) domain.Sentiment) *Personalized {
	return &Personalized{
		progress: progress,
		classify: classify,
		models:   make(map[string]*model),
	}
}

// Score rates a document for a learner using their trained model.
func (p *Personalized) Score(_ context.Context, learnerID string, doc *domain.Document) (float64, error) {
	if doc == nil {
		return 0, domain.ErrInvalidInput
	}

	p.mu.RLock()
	m, ok := p.models[learnerID]
	p.mu.RUnlock()
	if !ok {
		return 0, domain.ErrRerankerUnavailable
	}
	return m.predict(tokenize(doc.Content + " " + doc.Title())), nil
}

// Train fits the learner's model from their rated interactions and
// returns the final training loss.
func (p *Personalized) Train(ctx context.Context, learnerID string) (float64, error) {
	if learnerID == "" {
		return 0, domain.ErrInvalidInput
	}

	record, err := p.progress.Get(ctx, learnerID)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, domain.ErrRerankerUnavailable
	}
	if err != nil {
		return 0, fmt.Errorf("loading progress: %w", err)
	}

	type example struct {
		terms []string
		label float64
	}
	var examples []example
	for _, interaction := range record.Interactions {
		if interaction.Feedback == "" {
			continue
		}
		var label float64
		switch p.classify(interaction.Feedback) {
		case domain.SentimentPositive:
			label = 1
		case domain.SentimentNegative:
			label = 0
		default:
			continue
		}
		examples = append(examples, example{
			terms: tokenize(interaction.Query + " " + interaction.Response),
			label: label,
		})
	}
	if len(examples) < minRatedInteractions {
		return 0, domain.ErrRerankerUnavailable
	}

	m := &model{weights: make(map[string]float64)}
	var loss float64
	for epoch := 0; epoch < epochs; epoch++ {
		loss = 0
		for _, ex := range examples {
			predicted := m.predict(ex.terms)
			loss += crossEntropy(ex.label, predicted)

			grad := predicted - ex.label
			m.bias -= learningRate * grad
			for _, term := range ex.terms {
				m.weights[term] -= learningRate * grad
			}
		}
		loss /= float64(len(examples))
	}

	p.mu.Lock()
	p.models[learnerID] = m
	p.mu.Unlock()
	return loss, nil
}

// predict returns the sigmoid of the mean term weight plus bias. The mean
// keeps long documents from dominating on length alone.
func (m *model) predict(terms []string) float64 {
	if len(terms) == 0 {
		return sigmoid(m.bias)
	}
	var sum float64
	for _, term := range terms {
		sum += m.weights[term]
	}
	return sigmoid(sum/float64(len(terms)) + m.bias)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func crossEntropy(label, predicted float64) float64 {
	const epsilon = 1e-9
	predicted = math.Min(math.Max(predicted, epsilon), 1-epsilon)
	return -(label*math.Log(predicted) + (1-label)*math.Log(1-predicted))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
