package services

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
)

//go:embed knowledge.yaml
var knowledgeYAML []byte

// Vocabulary holds locale-specific word lists and topic tables used across
// the response and gap pipelines.
type Vocabulary struct {
	Stopwords           []string            `yaml:"stopwords"`
	Expansion           map[string][]string `yaml:"expansion"`
	RelatedTopics       map[string][]string `yaml:"related_topics"`
	FallbackQueries     []string            `yaml:"fallback_queries"`
	FallbackSuggestions []string            `yaml:"fallback_suggestions"`
	Feedback            struct {
		Positive []string `yaml:"positive"`
		Negative []string `yaml:"negative"`
	} `yaml:"feedback"`
	Categories map[string][]string `yaml:"categories"`

	stopwordSet map[string]struct{}
}

// LoadVocabulary parses the embedded knowledge tables.
func LoadVocabulary() (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(knowledgeYAML, &v); err != nil {
		return nil, fmt.Errorf("parsing knowledge tables: %w", err)
	}
	v.stopwordSet = make(map[string]struct{}, len(v.Stopwords))
	for _, w := range v.Stopwords {
		v.stopwordSet[strings.ToLower(w)] = struct{}{}
	}
	return &v, nil
}

// MustLoadVocabulary is LoadVocabulary for wiring paths where the embedded
// tables are known to be valid.
func MustLoadVocabulary() *Vocabulary {
	v, err := LoadVocabulary()
	if err != nil {
		panic(err)
	}
	return v
}

// Topics tokenizes text and returns the meaningful terms in order of first
// appearance. Stop-words and tokens of one or two characters are dropped,
// and duplicates are collapsed.
func (v *Vocabulary) Topics(text string) []string {
	tokens := tokenize(text)
	seen := make(map[string]struct{}, len(tokens))
	topics := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len([]rune(tok)) <= 2 {
			continue
		}
		if _, stop := v.stopwordSet[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		topics = append(topics, tok)
	}
	return topics
}

// ExpandQuery appends up to two synonym terms for the first expansion entry
// whose key occurs in the query. The original query text always comes first
// so exact matches keep their weight.
func (v *Vocabulary) ExpandQuery(query string) string {
	lower := strings.ToLower(query)

	keys := make([]string, 0, len(v.Expansion))
	for key := range v.Expansion {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !strings.Contains(lower, key) {
			continue
		}
		extra := v.Expansion[key]
		if len(extra) > 2 {
			extra = extra[:2]
		}
		return query + " " + strings.Join(extra, " ")
	}
	return query
}

// Related returns suggested topics for the query, capped at max. Entries
// from every matching table row are merged in key order; the fallback
// suggestions fill in when nothing matches.
func (v *Vocabulary) Related(query string, max int) []string {
	lower := strings.ToLower(query)

	keys := make([]string, 0, len(v.RelatedTopics))
	for key := range v.RelatedTopics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seen := make(map[string]struct{})
	var out []string
	for _, key := range keys {
		if !strings.Contains(lower, key) {
			continue
		}
		for _, topic := range v.RelatedTopics[key] {
			if _, dup := seen[topic]; dup {
				continue
			}
			seen[topic] = struct{}{}
			out = append(out, topic)
			if len(out) >= max {
				return out
			}
		}
	}
	if len(out) == 0 {
		for _, topic := range v.FallbackSuggestions {
			out = append(out, topic)
			if len(out) >= max {
				break
			}
		}
	}
	return out
}

// CategoryOf maps a topic to its subject category, or "geral" when no
// category lists it.
func (v *Vocabulary) CategoryOf(topic string) string {
	lower := strings.ToLower(topic)

	keys := make([]string, 0, len(v.Categories))
	for key := range v.Categories {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, category := range keys {
		for _, term := range v.Categories[category] {
			if strings.Contains(lower, term) || strings.Contains(term, lower) {
				return category
			}
		}
	}
	return "geral"
}

// ClassifyFeedback maps free-form feedback text onto a sentiment. Negative
// markers win over positive ones because the negative list contains negated
// forms of positive words.
func (v *Vocabulary) ClassifyFeedback(feedback string) domain.Sentiment {
	lower := strings.ToLower(strings.TrimSpace(feedback))
	if lower == "" {
		return domain.SentimentNeutral
	}
	for _, w := range v.Feedback.Negative {
		if strings.Contains(lower, w) {
			return domain.SentimentNegative
		}
	}
	for _, w := range v.Feedback.Positive {
		if strings.Contains(lower, w) {
			return domain.SentimentPositive
		}
	}
	return domain.SentimentNeutral
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit, keeping accented characters intact.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
