// Package labour implements the Australian labour market handler. It
// answers questions about unemployment, participation and earnings from
// locally collected data.
package labour

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
	"github.com/meridian-labs/yarra/internal/logger"
)

// Name is the handler's registry name.
const Name = "labour"

// Metric names tracked by this handler.
const (
	MetricUnemployment  = "unemployment_rate"
	MetricParticipation = "labour_force_participation_rate"
	MetricEmployed      = "employed_persons_total"
	MetricEarnings      = "fulltime_adult_avg_weekly_ordinary_earnings"
	MetricWageIndex     = "wage_price_index_annual"
)

const systemPrompt = `You are a labour market analyst answering from a local database of Australian employment data.
Use ONLY the data provided below. Never answer from memory.
Cite specific values, periods and sources. If the data does not cover the question, say what is missing.`

// Handler answers labour market questions from the metric store.
type Handler struct {
	metrics driven.MetricStore
	llm     driven.LLMService // optional; nil falls back to templated answers
}

// New creates the labour handler. llm may be nil.
func New(metrics driven.MetricStore, llm driven.LLMService) *Handler {
	return &Handler{metrics: metrics, llm: llm}
}

// Capabilities describes the handler for registration and routing.
func (h *Handler) Capabilities() domain.HandlerDescriptor {
	return domain.HandlerDescriptor{
		Name: Name,
		Description: "Monitors Australian labour market indicators including unemployment, " +
			"participation, employment and earnings.",
		Keywords: []string{
			"unemployment", "employment", "jobs", "jobless",
			"labour market", "labor market", "workforce", "participation",
			"wages", "wage growth", "earnings", "salary", "pay",
		},
		Metrics: []string{
			MetricUnemployment, MetricParticipation, MetricEmployed,
			MetricEarnings, MetricWageIndex,
		},
		Sources: []domain.DataSource{
			{
				Name:            "Australian Bureau of Statistics",
				Kind:            "api",
				URL:             "https://data.api.abs.gov.au",
				UpdateFrequency: "monthly",
				Description:     "Labour force survey and earnings data from the ABS Data API.",
			},
		},
		GeographicScope: "Australia",
		ExampleQuestions: []string{
			"What is the unemployment rate?",
			"How fast are wages growing?",
		},
	}
}

// Query answers one labour market question. Data access failures are
// reported through the result status, never as a returned error.
func (h *Handler) Query(ctx context.Context, question string, qctx driven.QueryContext) (domain.HandlerResult, error) {
	logger.Debug("labour handler answering %q", question)

	q := strings.ToLower(question)

	type lookup struct {
		metric string
		label  string
		format string
	}
	var lookups []lookup

	add := func(metric, label, format string) {
		lookups = append(lookups, lookup{metric, label, format})
	}

	wantsUnemployment := containsAny(q, "unemploy", "jobless", "jobs", "employment", "labour", "labor", "workforce")
	wantsParticipation := containsAny(q, "participation")
	wantsWages := containsAny(q, "wage", "earning", "salary", "pay", "income")

	if !wantsUnemployment && !wantsParticipation && !wantsWages {
		wantsUnemployment = true
	}

	if wantsUnemployment {
		add(MetricUnemployment, "unemployment rate",
			"The unemployment rate is %.1f%% (period %s).")
	}
	if wantsParticipation {
		add(MetricParticipation, "participation rate",
			"The participation rate is %.1f%% (period %s).")
	}
	if wantsWages {
		add(MetricWageIndex, "annual wage growth",
			"Annual wage growth is %.1f%% (period %s).")
		add(MetricEarnings, "average weekly earnings",
			"Average full-time weekly ordinary earnings are $%.0f (period %s).")
	}

	var sentences []string
	var cites []domain.Citation
	var missing []string
	for _, l := range lookups {
		obs, err := h.metrics.Latest(ctx, l.metric)
		if err != nil {
			missing = append(missing, l.label)
			continue
		}
		sentences = append(sentences, fmt.Sprintf(l.format, obs.Value, obs.Period))
		cites = appendCitation(cites, obs)
	}

	if len(sentences) == 0 {
		return domain.HandlerResult{
			HandlerName: Name,
			Status:      domain.ResultFailed,
			Diagnostic:  fmt.Sprintf("no stored data for question; missing: %s", strings.Join(missing, ", ")),
		}, nil
	}

	status := domain.ResultSuccess
	if len(missing) > 0 {
		status = domain.ResultPartial
	}

	return domain.HandlerResult{
		HandlerName: Name,
		Text:        h.compose(ctx, question, sentences),
		Citations:   cites,
		Status:      status,
		Diagnostic:  strings.Join(missing, ", "),
	}, nil
}

// compose turns the fetched sentences into answer text, via the LLM when
// configured.
func (h *Handler) compose(ctx context.Context, question string, sentences []string) string {
	if h.llm != nil {
		prompt := fmt.Sprintf("Question: %s\n\nData:\n- %s\n", question, strings.Join(sentences, "\n- "))
		text, err := h.llm.Chat(ctx,
			[]driven.ChatMessage{{Role: "user", Content: prompt}},
			driven.ChatOptions{SystemPrompt: systemPrompt, MaxTokens: 512},
		)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		logger.Warn("labour handler LLM composition failed, using templated answer: %v", err)
	}
	return strings.Join(sentences, " ")
}

func appendCitation(cites []domain.Citation, obs *domain.Observation) []domain.Citation {
	for _, c := range cites {
		if c.Source == obs.Source {
			return cites
		}
	}
	c := domain.Citation{Source: obs.Source}
	if !obs.CollectedAt.IsZero() {
		asOf := obs.CollectedAt
		c.AsOf = &asOf
	}
	return append(cites, c)
}

func containsAny(text string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}
