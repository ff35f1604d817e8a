package services

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driving"
	"github.com/meridian-labs/yarra/internal/logger"
)

// Router selects the handlers relevant to a question by lexical keyword
// matching. The scheme is deliberately simple and deterministic; any
// replacement must preserve the contract: scores in [0,1], stable
// ordering, explicit empty result.
type Router struct {
	mu        sync.RWMutex
	threshold float64
}

// NewRouter creates a router with the given relevance threshold.
// A threshold of zero means any keyword match selects the handler.
func NewRouter(threshold float64) *Router {
	return &Router{threshold: threshold}
}

// SetThreshold replaces the relevance threshold. Safe to call while
// questions are being routed; in-flight routes keep the threshold they
// started with.
func (r *Router) SetThreshold(threshold float64) {
	r.mu.Lock()
	r.threshold = threshold
	r.mu.Unlock()
}

// Route scores every registered handler against the question and returns
// the ranked decision. Handlers scoring at or above the threshold are
// included, score descending, ties broken by registration order. Zero
// scores are never included regardless of threshold.
func (r *Router) Route(question string, registry driving.HandlerRegistry) domain.RoutingDecision {
	logger.Section("Routing")
	normalised := normaliseQuestion(question)
	tokens := tokenSet(normalised)

	r.mu.RLock()
	threshold := r.threshold
	r.mu.RUnlock()

	descs := registry.All()
	ranked := make([]domain.RankedHandler, 0, len(descs))
	for _, desc := range descs {
		score := scoreHandler(desc, normalised, tokens)
		logger.Debug("handler %q scored %.3f", desc.Name, score)
		if score > 0 && score >= threshold {
			ranked = append(ranked, domain.RankedHandler{Descriptor: desc, Score: score})
		}
	}

	// Stable sort keeps registration order for equal scores.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	logger.Info("routed to %d of %d handlers", len(ranked), len(descs))
	return domain.RoutingDecision{Handlers: ranked}
}

// scoreHandler computes the fraction of the handler's keyword weight
// matched by the question. A phrase's weight equals its token count, so
// multi-word phrase matches count more than single-word matches.
func scoreHandler(desc domain.HandlerDescriptor, question string, tokens map[string]struct{}) float64 {
	keywords := desc.NormalisedKeywords()
	if len(keywords) == 0 {
		return 0
	}

	var matched, total float64
	for _, phrase := range keywords {
		weight := float64(len(strings.Fields(phrase)))
		total += weight
		if phraseMatches(phrase, question, tokens) {
			matched += weight
		}
	}
	if total == 0 {
		return 0
	}
	score := matched / total
	if score > 1 {
		score = 1
	}
	return score
}

// phraseMatches reports whether the phrase occurs in the question as a
// substring (multi-word phrases) or as a whole token (single words).
func phraseMatches(phrase, question string, tokens map[string]struct{}) bool {
	if strings.ContainsRune(phrase, ' ') {
		return strings.Contains(question, phrase)
	}
	if _, ok := tokens[phrase]; ok {
		return true
	}
	// Single keywords still match inside the raw text so "rates" in the
	// question matches the keyword "rate" boundaries permitting.
	return containsToken(question, phrase)
}

// containsToken reports whether word appears in text starting at a token
// boundary, e.g. "rate" matches "rates" but not "strategy". The text is
// already normalised, so boundaries are single spaces.
func containsToken(text, word string) bool {
	for start := 0; start < len(text); {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		abs := start + idx
		if abs == 0 || text[abs-1] == ' ' {
			return true
		}
		start = abs + len(word)
	}
	return false
}

// normaliseQuestion lowercases the question and collapses non-word runes
// to single spaces.
func normaliseQuestion(q string) string {
	var b strings.Builder
	b.Grow(len(q))
	lastSpace := true
	for _, r := range strings.ToLower(q) {
		if isWordRune(r) {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

func tokenSet(normalised string) map[string]struct{} {
	fields := strings.Fields(normalised)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
