// Package assemble builds the generation prompt: the system prompt enriched
// with long-term memory, the conversation history and the new user turn.
//
// Each memory section has its own source. A source that is missing or fails
// only drops its section; sections keep a fixed order.
package assemble

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"memoryd/internal/memindex"
	"memoryd/internal/memstore"
	"memoryd/internal/persona"
)

// Section names a memory block of the system prompt.
type Section string

const (
	SectionFacts    Section = "facts"
	SectionSemantic Section = "semantic"
	SectionKeyword  Section = "keyword"
	SectionPersona  Section = "persona"
)

// Limits of the memory sections.
const (
	FactsLimit         = 5
	SemanticLimit      = 5
	SemanticFloor      = 0.4
	SemanticDisplayMin = 0.5
	SemanticShown      = 3
	KeywordCount       = 3
	KeywordMinRunes    = 4
	KeywordLimit       = 3
	snippetRunes       = 200
)

// ContextHit is a semantic search hit with its content.
type ContextHit struct {
	Kind       memindex.SourceKind `json:"source_kind"`
	SourceID   int64               `json:"source_id"`
	Content    string              `json:"content"`
	Similarity float32             `json:"similarity"`
}

type FactSource interface {
	TopMemories(ctx context.Context, limit int) ([]memstore.Memory, error)
}

type SemanticSource interface {
	FindContext(ctx context.Context, query string, limit int, minSimilarity float32) ([]ContextHit, error)
}

type KeywordSource interface {
	SearchOtherSessions(ctx context.Context, query string, exclude int64, limit int) ([]memstore.GlobalMessage, error)
}

type PersonaSource interface {
	GetPersona(ctx context.Context) (memstore.Persona, bool, error)
}

// Config wires the sources. Nil sources are skipped.
type Config struct {
	Facts    FactSource
	Semantic SemanticSource
	Keywords KeywordSource
	Persona  PersonaSource
	Logger   *zerolog.Logger
}

type Assembler struct {
	cfg Config
	log zerolog.Logger
}

func New(cfg Config) *Assembler {
	a := &Assembler{cfg: cfg, log: zerolog.Nop()}
	if cfg.Logger != nil {
		a.log = cfg.Logger.With().Str("component", "assemble").Logger()
	}
	return a
}

// Request is the input of Assemble.
type Request struct {
	SystemPrompt string
	Utterance    string
	// SessionID excludes the current session from keyword matches.
	SessionID int64
	History   []Turn
}

// AssembledContext is the final prompt and the sections it contains.
type AssembledContext struct {
	System   string
	Prompt   string
	Sections []Section
}

// Has reports whether s was included.
func (c AssembledContext) Has(s Section) bool {
	for _, x := range c.Sections {
		if x == s {
			return true
		}
	}
	return false
}

// Assemble fetches all sections concurrently and renders the prompt. It
// never fails; the error of a section source is logged and the section is
// left out.
func (a *Assembler) Assemble(ctx context.Context, req Request) AssembledContext {
	blocks := make([]string, 4)
	order := []Section{SectionFacts, SectionSemantic, SectionKeyword, SectionPersona}
	fetch := []func(context.Context, Request) (string, error){
		a.factsBlock, a.semanticBlock, a.keywordBlock, a.personaBlock,
	}
	var g errgroup.Group
	for i := range fetch {
		g.Go(func() error {
			block, err := fetch[i](ctx, req)
			if err != nil {
				a.log.Warn().Err(err).Str("section", string(order[i])).Msg("section omitted")
				return nil
			}
			blocks[i] = block
			return nil
		})
	}
	_ = g.Wait()

	var sys strings.Builder
	sys.WriteString(req.SystemPrompt)
	sys.WriteString(memorySuffix)
	var included []Section
	for i, b := range blocks {
		if b == "" {
			continue
		}
		sys.WriteString(b)
		included = append(included, order[i])
	}
	system := sys.String()
	return AssembledContext{
		System:   system,
		Prompt:   RenderChatML(system, req.History, req.Utterance),
		Sections: included,
	}
}

func (a *Assembler) factsBlock(ctx context.Context, _ Request) (string, error) {
	if a.cfg.Facts == nil {
		return "", nil
	}
	mems, err := a.cfg.Facts.TopMemories(ctx, FactsLimit)
	if err != nil || len(mems) == 0 {
		return "", err
	}
	var b strings.Builder
	b.WriteString("=== IMPORTANT FACTS FROM MEMORY ===\n")
	for _, m := range mems {
		fmt.Fprintf(&b, "- [%s] %s\n", m.Category, m.Content)
	}
	b.WriteByte('\n')
	return b.String(), nil
}

func (a *Assembler) semanticBlock(ctx context.Context, req Request) (string, error) {
	if a.cfg.Semantic == nil || strings.TrimSpace(req.Utterance) == "" {
		return "", nil
	}
	hits, err := a.cfg.Semantic.FindContext(ctx, req.Utterance, SemanticLimit, SemanticFloor)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	shown := 0
	for _, h := range hits {
		if h.Similarity <= SemanticDisplayMin {
			continue
		}
		if shown == 0 {
			b.WriteString("=== RELEVANT CONTEXT (for reference) ===\n")
		}
		fmt.Fprintf(&b, "[%s] %s\n", sourceLabel(h.Kind), truncateRunes(h.Content, snippetRunes))
		if shown++; shown == SemanticShown {
			break
		}
	}
	if shown == 0 {
		return "", nil
	}
	b.WriteByte('\n')
	return b.String(), nil
}

func (a *Assembler) keywordBlock(ctx context.Context, req Request) (string, error) {
	if a.cfg.Keywords == nil {
		return "", nil
	}
	kws := Keywords(req.Utterance)
	if len(kws) == 0 {
		return "", nil
	}
	msgs, err := a.cfg.Keywords.SearchOtherSessions(ctx, strings.Join(kws, " OR "), req.SessionID, KeywordLimit)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, m := range msgs {
		if b.Len() == 0 {
			b.WriteString("=== CONTEXT FROM OTHER CHATS ===\n")
		}
		role := "Assistant"
		if m.IsUser {
			role = "User"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.SessionTitle, role, truncateRunes(m.Content, snippetRunes))
	}
	if b.Len() == 0 {
		return "", nil
	}
	b.WriteByte('\n')
	return b.String(), nil
}

func (a *Assembler) personaBlock(ctx context.Context, _ Request) (string, error) {
	if a.cfg.Persona == nil {
		return "", nil
	}
	p, ok, err := a.cfg.Persona.GetPersona(ctx)
	if err != nil || !ok {
		return "", err
	}
	return "=== USER PROFILE ===\n" + persona.Summary(p) + "\n\n", nil
}

// Keywords returns the first words of text longer than three characters.
func Keywords(text string) []string {
	var out []string
	for _, w := range strings.Fields(text) {
		if utf8.RuneCountInString(w) < KeywordMinRunes {
			continue
		}
		out = append(out, w)
		if len(out) == KeywordCount {
			break
		}
	}
	return out
}

func sourceLabel(k memindex.SourceKind) string {
	switch k {
	case memindex.KindMemory:
		return "Memory"
	case memindex.KindMessage:
		return "Message"
	}
	return string(k)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
