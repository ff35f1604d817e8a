package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

func keywordHandler(name string, keywords ...string) *stubHandler {
	return &stubHandler{name: name, keywords: keywords}
}

func TestRouterRoutesByKeyword(t *testing.T) {
	r, err := NewRegistryWith(
		keywordHandler("housing", "interest rate", "cash rate", "housing", "mortgage"),
		keywordHandler("labour", "unemployment", "wages", "employment"),
	)
	require.NoError(t, err)

	router := NewRouter(0)
	decision := router.Route("What is the current cash rate?", r)

	require.False(t, decision.IsEmpty())
	assert.Equal(t, []string{"housing"}, decision.Names())
}

func TestRouterScoreIsMatchedWeightFraction(t *testing.T) {
	// Weights: "interest rate"=2, "housing"=1, "mortgage"=1 -> total 4.
	// "interest rate" and "housing" match -> 3/4.
	r, err := NewRegistryWith(
		keywordHandler("housing", "interest rate", "housing", "mortgage"),
	)
	require.NoError(t, err)

	decision := NewRouter(0).Route("how does the interest rate affect housing", r)
	require.Len(t, decision.Handlers, 1)
	assert.InDelta(t, 0.75, decision.Handlers[0].Score, 1e-9)
}

func TestRouterOrdersByScoreDescending(t *testing.T) {
	r, err := NewRegistryWith(
		keywordHandler("labour", "unemployment", "wages"),       // 1 of 2 matched
		keywordHandler("housing", "unemployment"),               // 1 of 1 matched
	)
	require.NoError(t, err)

	decision := NewRouter(0).Route("latest unemployment figures", r)
	require.Len(t, decision.Handlers, 2)
	assert.Equal(t, "housing", decision.Handlers[0].Descriptor.Name)
	assert.Equal(t, "labour", decision.Handlers[1].Descriptor.Name)
	assert.Greater(t, decision.Handlers[0].Score, decision.Handlers[1].Score)
}

func TestRouterTiesBreakByRegistrationOrder(t *testing.T) {
	r, err := NewRegistryWith(
		keywordHandler("second-registered", "economy"),
		keywordHandler("first-alphabetically", "economy"),
	)
	require.NoError(t, err)

	decision := NewRouter(0).Route("how is the economy going", r)
	require.Len(t, decision.Handlers, 2)
	assert.Equal(t, decision.Handlers[0].Score, decision.Handlers[1].Score)
	assert.Equal(t, "second-registered", decision.Handlers[0].Descriptor.Name)
}

func TestRouterThresholdFiltersLowScores(t *testing.T) {
	// One matched keyword of four -> score 0.25.
	r, err := NewRegistryWith(
		keywordHandler("housing", "housing", "mortgage", "rent", "approvals"),
	)
	require.NoError(t, err)

	assert.False(t, NewRouter(0.2).Route("rent in sydney", r).IsEmpty())
	assert.True(t, NewRouter(0.5).Route("rent in sydney", r).IsEmpty())
}

func TestRouterNoMatchIsEmptyNeverFallback(t *testing.T) {
	r, err := NewRegistryWith(
		keywordHandler("housing", "housing", "mortgage"),
		keywordHandler("labour", "unemployment", "wages"),
	)
	require.NoError(t, err)

	decision := NewRouter(0).Route("what is the weather in paris", r)
	assert.True(t, decision.IsEmpty())
	assert.Empty(t, decision.Handlers)
}

func TestRouterZeroScoreExcludedEvenAtZeroThreshold(t *testing.T) {
	r, err := NewRegistryWith(keywordHandler("nokeywords"))
	require.NoError(t, err)

	decision := NewRouter(0).Route("anything at all", r)
	assert.True(t, decision.IsEmpty())
}

func TestRouterMatchingIsCaseInsensitiveAndPunctuationBlind(t *testing.T) {
	r, err := NewRegistryWith(
		keywordHandler("housing", "cash rate", "rba"),
	)
	require.NoError(t, err)

	router := NewRouter(0)
	assert.False(t, router.Route("What did the RBA say about the CASH RATE?!", r).IsEmpty())
	assert.False(t, router.Route("cash-rate decision", r).IsEmpty())
}

func TestRouterSingleKeywordMatchesWordPrefixNotInfix(t *testing.T) {
	r, err := NewRegistryWith(keywordHandler("housing", "rate"))
	require.NoError(t, err)

	router := NewRouter(0)
	// "rates" starts at a token boundary, so the stem matches.
	assert.False(t, router.Route("are rates going up", r).IsEmpty())
	// "strategy" contains "rate" mid-word and must not match.
	assert.True(t, router.Route("what is the strategy", r).IsEmpty())
}

func TestNormaliseQuestion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"What is the CASH rate?", "what is the cash rate"},
		{"  spaced\tout\n\nwords  ", "spaced out words"},
		{"cash-rate, (2024)!", "cash rate 2024"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normaliseQuestion(tt.in), "input %q", tt.in)
	}
}

func TestScoreHandlerCapsAtOne(t *testing.T) {
	desc := domain.HandlerDescriptor{
		Name: "housing",
		// Duplicate keywords collapse during normalisation, so a full
		// match is exactly 1.0.
		Keywords: []string{"housing", "Housing", "mortgage"},
	}
	q := normaliseQuestion("housing mortgage stress")
	score := scoreHandler(desc, q, tokenSet(q))
	assert.Equal(t, 1.0, score)
}

func TestRouterSetThresholdAppliesToLaterRoutes(t *testing.T) {
	// One matched keyword of four -> score 0.25.
	r, err := NewRegistryWith(
		keywordHandler("housing", "housing", "mortgage", "rent", "approvals"),
	)
	require.NoError(t, err)

	router := NewRouter(0.5)
	assert.True(t, router.Route("rent in sydney", r).IsEmpty())

	router.SetThreshold(0.2)
	assert.False(t, router.Route("rent in sydney", r).IsEmpty())
}
