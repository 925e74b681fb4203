package services

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"

	"github.com/tutoria-labs/tutoria/internal/core/domain"
)

// introTemplates open an answer. The template is picked deterministically
// from the query so repeated questions read the same.
var introTemplates = []string{
	"Vamos explorar esse assunto juntos.",
	"Ótima pergunta! Veja o que encontrei no material.",
	"Encontrei conteúdo relevante sobre isso no seu material de estudo.",
	"Boa escolha de tema. Aqui está o que o material traz.",
}

// maxFollowUps caps the follow-up suggestions appended to an answer.
const maxFollowUps = 3

// uncertaintyIndicators flag queries phrased as open questions, which get
// gentler beginner follow-ups.
var uncertaintyIndicators = []string{
	"como", "porque", "por que", "o que é", "definição", "explique",
	"diferença", "funcionamento", "dúvida", "não entendo",
}

// followUpSuggestions returns up to maxFollowUps next steps for the level.
// Beginners asking open questions get the more hand-holding variant.
func followUpSuggestions(level domain.Level, query string) []string {
	switch level {
	case domain.LevelBeginner:
		lowered := strings.ToLower(query)
		for _, indicator := range uncertaintyIndicators {
			if strings.Contains(lowered, indicator) {
				return []string{
					"Conceitos fundamentais relacionados a este tópico",
					"Exemplos práticos e aplicações do dia a dia",
					"Materiais introdutórios em formato visual",
				}
			}
		}
		return []string{
			"Princípios básicos para aprofundar seu conhecimento",
			"Etapas iniciais para aplicar este conhecimento",
			"Recursos recomendados para iniciantes",
		}
	case domain.LevelAdvanced:
		return []string{
			"Pesquisas recentes e desenvolvimentos nesta área",
			"Aplicações complexas e casos de uso específicos",
			"Tópicos avançados para exploração adicional",
		}
	default:
		return []string{
			"Estudos de caso e aplicações práticas",
			"Técnicas avançadas relacionadas a este tópico",
			"Desafios comuns e como superá-los",
		}
	}
}

// Composer renders the final textual answer from selected documents.
type Composer struct {
	vocab    *Vocabulary
	excerpts *ExcerptSelector
}

// NewComposer creates a response composer.
func NewComposer(vocab *Vocabulary, excerpts *ExcerptSelector) *Composer {
	return &Composer{vocab: vocab, excerpts: excerpts}
}

// ComposeInput carries everything a single composition needs.
type ComposeInput struct {
	Query       string
	Level       domain.Level
	Primary     *domain.Document
	Complements []*domain.Document
	Related     []string

	// Approximate marks answers built from fallback retrieval rather
	// than a direct match for the query.
	Approximate bool

	// ExactMatch marks answers whose top candidate matched the query
	// directly; exact answers skip the intro and get to the point.
	ExactMatch bool

	// Continuing suppresses the intro in favor of a continuation phrase.
	Continuing bool

	// History holds the prior turns of the conversation, oldest first,
	// prepended as plain-text context when Continuing is set.
	History []domain.ConversationTurn

	// WeakTopic, when set, appends a reinforcement note for a topic the
	// learner has struggled with.
	WeakTopic string
}

// Compose builds the full answer text: intro, primary excerpt with a type
// header, complementary excerpts with sources, related topics, a follow-up
// hint, and a single machine-readable source marker.
func (c *Composer) Compose(in ComposeInput) string {
	var b strings.Builder

	switch {
	case in.Continuing:
		b.WriteString("Continuando nossa conversa:")
		for _, turn := range in.History {
			b.WriteString("\n")
			b.WriteString(roleLabel(turn.Role))
			b.WriteString(": ")
			b.WriteString(preview(turn.Content))
		}
		b.WriteString("\n\n")
	case in.Approximate:
		b.WriteString(fmt.Sprintf("Não encontrei uma resposta direta para %q, mas este conteúdo próximo pode ajudar.", in.Query))
		b.WriteString("\n\n")
	case in.ExactMatch:
		// Exact matches answer directly, no intro.
	default:
		b.WriteString(pickIntro(in.Query))
		b.WriteString("\n\n")
	}

	b.WriteString(typeHeader(in.Primary))
	b.WriteString("\n")
	b.WriteString(c.excerpts.PrimaryExcerpt(in.Primary.Content, in.Query, in.Level))

	for _, doc := range in.Complements {
		excerpt := c.excerpts.ComplementaryExcerpt(doc.Content, in.Query, in.Level)
		if excerpt == "" {
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("Conteúdo complementar (%s):\n%s", sourceLabel(doc), excerpt))
	}

	if len(in.Related) > 0 {
		b.WriteString("\n\nTópicos relacionados: ")
		b.WriteString(strings.Join(in.Related, ", "))
	}

	if in.WeakTopic != "" {
		b.WriteString(fmt.Sprintf("\n\nNotei que %q é um tema que você vem reforçando. Revise os fundamentos com calma antes de avançar.", in.WeakTopic))
	}

	if suggestions := followUpSuggestions(in.Level, in.Query); len(suggestions) > 0 {
		if len(suggestions) > maxFollowUps {
			suggestions = suggestions[:maxFollowUps]
		}
		b.WriteString("\n\nPara continuar explorando:")
		for _, s := range suggestions {
			b.WriteString("\n- ")
			b.WriteString(s)
		}
	}

	if marker := sourceMarker(in.Primary, in.Complements); marker != "" {
		b.WriteString("\n\n")
		b.WriteString(marker)
	}

	return b.String()
}

// NotFound is the answer for queries with no retrievable content at all.
func (c *Composer) NotFound(query string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Não encontrei conteúdo sobre %q no material indexado.", query))
	if suggestions := c.vocab.Related(query, 3); len(suggestions) > 0 {
		b.WriteString("\n\nQue tal explorar um destes tópicos? ")
		b.WriteString(strings.Join(suggestions, ", "))
	}
	return b.String()
}

func pickIntro(query string) string {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(query))))
	return introTemplates[int(h.Sum32())%len(introTemplates)]
}

// roleLabel renders a conversation role for the history block.
func roleLabel(role string) string {
	if role == domain.RoleAssistant {
		return "Assistente"
	}
	return "Usuário"
}

// typeHeader renders a media-specific heading for the primary document.
// Transcribed media points the learner at the first relevant segment.
func typeHeader(doc *domain.Document) string {
	name := sourceLabel(doc)
	switch doc.DocType {
	case domain.DocTypeVideo:
		if start, ok := firstSegmentStart(doc); ok {
			return fmt.Sprintf("Do vídeo %s (início em %s):", name, formatClock(start))
		}
		if d, ok := doc.Metadata[domain.MetaDuration].(float64); ok && d > 0 {
			return fmt.Sprintf("Do vídeo %s (%s):", name, formatClock(d))
		}
		return fmt.Sprintf("Do vídeo %s:", name)
	case domain.DocTypeAudio:
		start, hasStart := firstSegmentStart(doc)
		d, hasDuration := doc.Metadata[domain.MetaDuration].(float64)
		switch {
		case hasStart && hasDuration && d > 0:
			return fmt.Sprintf("Do áudio %s (início em %s, duração %s):", name, formatClock(start), formatClock(d))
		case hasStart:
			return fmt.Sprintf("Do áudio %s (início em %s):", name, formatClock(start))
		case hasDuration && d > 0:
			return fmt.Sprintf("Do áudio %s (%s):", name, formatClock(d))
		}
		return fmt.Sprintf("Do áudio %s:", name)
	case domain.DocTypeImage:
		w, wok := doc.Metadata[domain.MetaWidth].(int)
		h, hok := doc.Metadata[domain.MetaHeight].(int)
		if wok && hok && w > 0 && h > 0 {
			return fmt.Sprintf("Da imagem %s (%dx%d):", name, w, h)
		}
		return fmt.Sprintf("Da imagem %s:", name)
	default:
		return fmt.Sprintf("Do material %s:", name)
	}
}

// firstSegmentStart returns the start offset of the first transcription
// segment, when the parser recorded any.
func firstSegmentStart(doc *domain.Document) (float64, bool) {
	segments, ok := doc.Metadata[domain.MetaTimestamps].([]domain.Segment)
	if !ok || len(segments) == 0 {
		return 0, false
	}
	return segments[0].Start, true
}

// sourceLabel is the basename of the document's source path, falling back
// to the title.
func sourceLabel(doc *domain.Document) string {
	if src := doc.Source(); src != "" {
		return filepath.Base(src)
	}
	return doc.Title()
}

// sourceMarker emits the single machine-readable source line. When several
// documents carry a source path, richer media wins: video over audio over
// image over text.
func sourceMarker(primary *domain.Document, complements []*domain.Document) string {
	docs := append([]*domain.Document{primary}, complements...)

	priority := []domain.DocType{domain.DocTypeVideo, domain.DocTypeAudio, domain.DocTypeImage}
	for _, t := range priority {
		for _, doc := range docs {
			if doc.DocType == t && doc.Source() != "" {
				return "file_path: " + doc.Source()
			}
		}
	}
	for _, doc := range docs {
		if doc.Source() != "" {
			return "file_path: " + doc.Source()
		}
	}
	return ""
}

// formatClock renders seconds as MM:SS, or H:MM:SS past an hour.
func formatClock(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
