package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
	"github.com/tutoria-labs/tutoria/internal/core/ports/driving"
)

// --- Mock implementations ---

type mockIngestor struct {
	indexed []string
	report  *driving.IngestReport
	err     error
}

func (m *mockIngestor) IngestFile(_ context.Context, path string) error {
	m.indexed = append(m.indexed, path)
	return m.err
}

func (m *mockIngestor) IngestDirectory(_ context.Context, dir string) (*driving.IngestReport, error) {
	m.indexed = append(m.indexed, dir)
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &driving.IngestReport{}, nil
}

type mockResponder struct {
	answer   string
	lastOpts driving.ResponseOptions
	related  []domain.RelatedContent
	feedback []string
	err      error
}

func (m *mockResponder) GenerateResponse(_ context.Context, _ string, opts driving.ResponseOptions) (string, error) {
	m.lastOpts = opts
	return m.answer, m.err
}

func (m *mockResponder) SuggestRelated(_ context.Context, _ string, _ domain.Level, _ int) ([]domain.RelatedContent, error) {
	return m.related, m.err
}

func (m *mockResponder) RecordFeedback(_ context.Context, _, _, _, text string) error {
	m.feedback = append(m.feedback, text)
	return m.err
}

type mockAnalyzer struct {
	report *domain.GapReport
	plan   *domain.ImprovementPlan
	err    error
}

func (m *mockAnalyzer) AnalyzeProgress(context.Context, string) (*domain.GapReport, error) {
	return m.report, m.err
}

func (m *mockAnalyzer) BuildImprovementPlan(context.Context, string) (*domain.ImprovementPlan, error) {
	return m.plan, m.err
}

func (m *mockAnalyzer) UpdateStrengthsWeaknesses(context.Context, string) error {
	return m.err
}

type mockWatcher struct {
	watched []string
	err     error
}

func (m *mockWatcher) Watch(dir string) error {
	m.watched = append(m.watched, dir)
	return m.err
}

// setTestServices installs service mocks and restores the previous ones
// when the test finishes.
func setTestServices(t *testing.T, ingestor driving.Ingestor, responder driving.Responder, analyzer driving.GapAnalyzer, watcher WatchStarter) {
	t.Helper()
	prevIngest, prevRespond, prevGap, prevWatch := ingestService, respondService, gapService, watchService
	t.Cleanup(func() {
		ingestService, respondService, gapService, watchService = prevIngest, prevRespond, prevGap, prevWatch
	})
	SetServices(ingestor, responder, analyzer, watcher)
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
