// Package housing implements the Australian housing market handler. It
// answers questions about building approvals, interest rates, lending
// and RBA monetary policy from locally collected data.
package housing

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
	"github.com/meridian-labs/yarra/internal/core/ports/driving"
	"github.com/meridian-labs/yarra/internal/logger"
)

// Name is the handler's registry name.
const Name = "housing"

// Metric names tracked by this handler.
const (
	MetricCashRate          = "interest_rate_cash"
	MetricApprovalsTotal    = "housing_approvals_total"
	MetricApprovalsHouses   = "housing_approvals_houses"
	MetricApprovalsUnits    = "housing_approvals_apartments"
	MetricInflationCPI      = "inflation_cpi_annual"
	MetricInflationTrimmed  = "inflation_trimmed_mean_annual"
	MetricVariableRate      = "housing_lending_rate_variable_owner_occupier"
	MetricLoanSizeFirstHome = "avg_loan_size_first_home_buyer"
	MetricLoanSizeOwnerOcc  = "avg_loan_size_owner_occupier"
	MetricWeeklyEarnings    = "fulltime_adult_avg_weekly_ordinary_earnings"
)

// DocTypeRBAMinutes is the document type for RBA board meeting minutes.
const DocTypeRBAMinutes = "rba_minutes"

const systemPrompt = `You are a housing market analyst answering from a local database of Australian housing data.
Use ONLY the data provided below. Never answer from memory.
Cite specific values, periods and sources. If the data does not cover the question, say what is missing.`

// Handler answers housing market questions. All data access goes through
// the stores and the query gateway; the handler never opens its own
// database connection.
type Handler struct {
	metrics driven.MetricStore
	docs    driven.DocumentStore
	gateway driving.QueryGateway
	llm     driven.LLMService // optional; nil falls back to templated answers
}

// New creates the housing handler. llm may be nil.
func New(metrics driven.MetricStore, docs driven.DocumentStore, gateway driving.QueryGateway, llm driven.LLMService) *Handler {
	return &Handler{metrics: metrics, docs: docs, gateway: gateway, llm: llm}
}

// Capabilities describes the handler for registration and routing.
func (h *Handler) Capabilities() domain.HandlerDescriptor {
	return domain.HandlerDescriptor{
		Name: Name,
		Description: "Monitors Australian housing market indicators including building approvals, " +
			"interest rates, lending and RBA monetary policy decisions.",
		Keywords: []string{
			"housing", "property", "real estate", "mortgage", "home loan",
			"dwelling", "apartment", "house price", "rent", "rental",
			"building approval", "building approvals",
			"interest rate", "rba", "reserve bank", "cash rate",
			"housing affordability", "affordability",
			"inflation", "cpi", "monetary policy",
		},
		Metrics: []string{
			MetricApprovalsTotal, MetricApprovalsHouses, MetricApprovalsUnits,
			MetricCashRate, MetricInflationCPI, MetricInflationTrimmed,
			MetricVariableRate, MetricLoanSizeFirstHome, MetricLoanSizeOwnerOcc,
		},
		Sources: []domain.DataSource{
			{
				Name:            "Reserve Bank of Australia",
				Kind:            "csv",
				URL:             "https://www.rba.gov.au/statistics/tables/",
				UpdateFrequency: "monthly",
				Description:     "Cash rate, lending rates and inflation from RBA statistical tables.",
			},
			{
				Name:            "Australian Bureau of Statistics",
				Kind:            "api",
				URL:             "https://data.api.abs.gov.au",
				UpdateFrequency: "monthly",
				Description:     "Building approvals and lending indicators from the ABS Data API.",
			},
		},
		GeographicScope: "Australia",
		ExampleQuestions: []string{
			"What is the current cash rate?",
			"How have building approvals trended this year?",
			"How affordable is a first home buyer loan right now?",
		},
	}
}

// Query answers one housing market question. Data access failures are
// reported through the result status, never as a returned error.
func (h *Handler) Query(ctx context.Context, question string, qctx driven.QueryContext) (domain.HandlerResult, error) {
	logger.Debug("housing handler answering %q", question)

	facts, missing := h.prefetch(ctx, question)
	if len(facts) == 0 {
		return domain.HandlerResult{
			HandlerName: Name,
			Status:      domain.ResultFailed,
			Diagnostic:  fmt.Sprintf("no stored data for question; missing: %s", strings.Join(missing, ", ")),
		}, nil
	}

	text := h.compose(ctx, question, facts)
	status := domain.ResultSuccess
	if len(missing) > 0 {
		status = domain.ResultPartial
	}

	return domain.HandlerResult{
		HandlerName: Name,
		Text:        text,
		Citations:   citations(facts),
		Status:      status,
		Diagnostic:  strings.Join(missing, ", "),
	}, nil
}

// fact is one prefetched piece of evidence, already formatted for both
// the LLM prompt and the templated fallback.
type fact struct {
	label    string
	sentence string
	citation domain.Citation
}

// prefetch gathers the evidence relevant to the question. It returns the
// usable facts and the labels of lookups that failed.
func (h *Handler) prefetch(ctx context.Context, question string) ([]fact, []string) {
	q := strings.ToLower(question)

	var facts []fact
	var missing []string

	addMetric := func(metric, label, format string) {
		obs, err := h.metrics.Latest(ctx, metric)
		if err != nil {
			missing = append(missing, label)
			return
		}
		facts = append(facts, fact{
			label:    label,
			sentence: fmt.Sprintf(format, obs.Value, obs.Period),
			citation: obsCitation(obs),
		})
	}

	wantsRates := containsAny(q, "cash rate", "interest rate", "rba", "reserve bank", "monetary policy", "rate")
	wantsApprovals := containsAny(q, "approval", "dwelling", "construction", "building")
	wantsInflation := containsAny(q, "inflation", "cpi", "price")
	wantsMortgage := containsAny(q, "mortgage", "home loan", "lending", "variable")
	wantsAffordability := containsAny(q, "affordab", "stress", "repayment")
	wantsMinutes := containsAny(q, "minutes", "meeting", "board", "decision", "statement")
	wantsTrend := containsAny(q, "trend", "history", "over time", "growth", "changed", "moved")

	// Broad questions get the headline indicators.
	if !wantsRates && !wantsApprovals && !wantsInflation && !wantsMortgage && !wantsAffordability && !wantsMinutes {
		wantsRates, wantsApprovals = true, true
	}

	if wantsRates {
		addMetric(MetricCashRate, "RBA cash rate",
			"The current cash rate is %.2f%% (period %s).")
	}
	if wantsApprovals {
		addMetric(MetricApprovalsTotal, "total dwelling approvals",
			"Total dwelling approvals were %.0f (period %s).")
	}
	if wantsInflation {
		addMetric(MetricInflationCPI, "annual CPI inflation",
			"Annual CPI inflation is %.1f%% (period %s).")
	}
	if wantsMortgage {
		addMetric(MetricVariableRate, "variable owner-occupier rate",
			"The variable owner-occupier lending rate is %.2f%% (period %s).")
	}

	if wantsAffordability {
		if aff, err := h.affordability(ctx, LoanFirstHomeBuyer, false); err == nil {
			facts = append(facts, fact{
				label:    "first home buyer affordability",
				sentence: aff.Sentence(),
				citation: domain.Citation{Source: "ABS lending indicators and RBA lending rates"},
			})
		} else {
			missing = append(missing, "affordability inputs")
		}
	}

	if wantsTrend {
		trendMetric := MetricCashRate
		switch {
		case wantsApprovals:
			trendMetric = MetricApprovalsTotal
		case wantsInflation:
			trendMetric = MetricInflationCPI
		case wantsMortgage:
			trendMetric = MetricVariableRate
		}
		if g, err := h.analyzeGrowth(ctx, trendMetric); err == nil {
			facts = append(facts, fact{
				label:    "trend for " + trendMetric,
				sentence: g.Sentence(),
				citation: domain.Citation{Source: "stored observation series"},
			})
		} else {
			logger.Debug("housing trend analysis unavailable: %v", err)
			missing = append(missing, "trend for "+trendMetric)
		}
	}

	if wantsMinutes && h.docs != nil {
		if docs, err := h.docs.RecentByType(ctx, DocTypeRBAMinutes, 1); err == nil && len(docs) > 0 {
			doc := docs[0]
			published := doc.PublishedAt
			facts = append(facts, fact{
				label:    "latest RBA minutes",
				sentence: fmt.Sprintf("Latest RBA minutes (%s): %s", doc.Title, firstLines(doc.Content, 3)),
				citation: domain.Citation{Source: "RBA Monetary Policy Board minutes", URL: doc.SourceURL, AsOf: &published},
			})
		} else {
			missing = append(missing, "RBA minutes")
		}
	}

	return facts, missing
}

// compose turns the facts into answer text, via the LLM when configured.
func (h *Handler) compose(ctx context.Context, question string, facts []fact) string {
	if h.llm != nil {
		var b strings.Builder
		fmt.Fprintf(&b, "Question: %s\n\nData:\n", question)
		for _, f := range facts {
			fmt.Fprintf(&b, "- %s: %s\n", f.label, f.sentence)
		}
		text, err := h.llm.Chat(ctx,
			[]driven.ChatMessage{{Role: "user", Content: b.String()}},
			driven.ChatOptions{SystemPrompt: systemPrompt, MaxTokens: 512},
		)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		logger.Warn("housing handler LLM composition failed, using templated answer: %v", err)
	}

	sentences := make([]string, len(facts))
	for i, f := range facts {
		sentences[i] = f.sentence
	}
	return strings.Join(sentences, " ")
}

func citations(facts []fact) []domain.Citation {
	seen := make(map[string]struct{}, len(facts))
	out := make([]domain.Citation, 0, len(facts))
	for _, f := range facts {
		key := f.citation.Source + "|" + f.citation.URL
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f.citation)
	}
	return out
}

func obsCitation(obs *domain.Observation) domain.Citation {
	c := domain.Citation{Source: obs.Source}
	if !obs.CollectedAt.IsZero() {
		asOf := obs.CollectedAt
		c.AsOf = &asOf
	}
	return c
}

func containsAny(text string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}

func firstLines(text string, n int) string {
	lines := strings.SplitN(strings.TrimSpace(text), "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, " ")
}
