package services

import (
	"strings"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
)

// Excerpt budgets in characters, keyed by learner level.
var (
	primaryBudget = map[domain.Level]int{
		domain.LevelBeginner:     250,
		domain.LevelIntermediate: 500,
		domain.LevelAdvanced:     750,
	}
	complementaryBudget = map[domain.Level]int{
		domain.LevelBeginner:     150,
		domain.LevelIntermediate: 200,
		domain.LevelAdvanced:     300,
	}
)

const (
	maxComplementaryDocs = 2
	dedupePrefixLen      = 100
)

// ExcerptSelector extracts the most relevant portions of indexed documents,
// sized to the learner's level.
type ExcerptSelector struct {
	vocab *Vocabulary
}

// NewExcerptSelector creates an excerpt selector backed by the shared
// vocabulary tables.
func NewExcerptSelector(vocab *Vocabulary) *ExcerptSelector {
	return &ExcerptSelector{vocab: vocab}
}

// PrimaryExcerpt selects the best-matching paragraphs of content for the
// query, up to the level's primary budget.
func (s *ExcerptSelector) PrimaryExcerpt(content, query string, level domain.Level) string {
	return s.selectExcerpt(content, query, primaryBudget[level])
}

// ComplementaryExcerpt selects a shorter excerpt for supporting documents.
func (s *ExcerptSelector) ComplementaryExcerpt(content, query string, level domain.Level) string {
	return s.selectExcerpt(content, query, complementaryBudget[level])
}

// selectExcerpt splits content into paragraphs, scores each by how many
// query terms it contains, and greedily concatenates the best paragraphs
// until the character budget is spent. The first winning paragraph is
// always included even when it alone exceeds the budget; it is then
// truncated with an ellipsis.
func (s *ExcerptSelector) selectExcerpt(content, query string, budget int) string {
	content = strings.TrimSpace(content)
	if content == "" || budget <= 0 {
		return ""
	}
	if len(content) <= budget {
		return content
	}

	terms := s.vocab.Topics(query)
	paragraphs := splitParagraphs(content)

	type scored struct {
		text  string
		score int
		order int
	}
	ranked := make([]scored, 0, len(paragraphs))
	for i, p := range paragraphs {
		lower := strings.ToLower(p)
		score := 0
		for _, term := range terms {
			if strings.Contains(lower, term) {
				score++
			}
		}
		ranked = append(ranked, scored{text: p, score: score, order: i})
	}

	// Stable selection: higher score first, document order breaks ties.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].score > ranked[j-1].score; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	var b strings.Builder
	for _, p := range ranked {
		if b.Len() == 0 {
			b.WriteString(p.text)
			continue
		}
		if b.Len()+2+len(p.text) > budget {
			break
		}
		b.WriteString("\n\n")
		b.WriteString(p.text)
	}

	excerpt := b.String()
	if len(excerpt) > budget {
		excerpt = truncate(excerpt, budget)
	}
	return excerpt
}

// DedupeDocuments drops documents whose content starts the same way as an
// earlier one, comparing the first hundred characters. Order is preserved.
func DedupeDocuments(docs []*domain.Document) []*domain.Document {
	seen := make(map[string]struct{}, len(docs))
	out := make([]*domain.Document, 0, len(docs))
	for _, doc := range docs {
		prefix := doc.Content
		if len(prefix) > dedupePrefixLen {
			prefix = prefix[:dedupePrefixLen]
		}
		key := strings.ToLower(strings.TrimSpace(prefix))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, doc)
	}
	return out
}

// PartitionByFormat reorders docs so those matching the preferred format
// come first, preserving relative order within each group.
func PartitionByFormat(docs []*domain.Document, format domain.Format) []*domain.Document {
	preferred := make([]*domain.Document, 0, len(docs))
	rest := make([]*domain.Document, 0, len(docs))
	for _, doc := range docs {
		if format.Matches(doc.DocType) {
			preferred = append(preferred, doc)
		} else {
			rest = append(rest, doc)
		}
	}
	return append(preferred, rest...)
}

func splitParagraphs(content string) []string {
	parts := strings.Split(content, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// truncate cuts s at the last space before limit and appends an ellipsis,
// never splitting a multi-byte rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	truncated := s[:cut]
	if idx := strings.LastIndexByte(truncated, ' '); idx > limit/2 {
		truncated = truncated[:idx]
	}
	return strings.TrimRight(truncated, " \n") + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
