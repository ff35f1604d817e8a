// Package rba collects Reserve Bank of Australia data. The RBA publishes
// its statistical tables as CSV files at stable URLs and its board
// minutes as HTML pages at date-patterned URLs.
package rba

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
	"github.com/meridian-labs/yarra/internal/logger"
)

const (
	// userAgent identifies the collector to the RBA servers.
	userAgent = "Yarra Data Collector/1.0"

	// requestTimeout is the per-request HTTP timeout.
	requestTimeout = 60 * time.Second

	// requestsPerSecond throttles table fetches. The RBA publishes
	// monthly; there is no reason to hit it hard.
	requestsPerSecond = 0.5
)

// seriesSpec maps one CSV series ID to a stored metric.
type seriesSpec struct {
	Metric string
	Unit   string
}

// TableCollector fetches one RBA statistical table CSV and stores the
// configured series as observations.
type TableCollector struct {
	name    string
	url     string
	series  map[string]seriesSpec // series ID -> metric
	store   driven.MetricStore
	client  *http.Client
	limiter *rate.Limiter
}

// NewRatesCollector collects the cash rate and housing lending rates
// from interest rate tables F1.1 and F6.
func NewRatesCollector(store driven.MetricStore) *TableCollector {
	return newTableCollector(
		"rba-rates",
		"https://www.rba.gov.au/statistics/tables/csv/f1.1-data.csv",
		map[string]seriesSpec{
			"FIRMMCRTD": {Metric: "interest_rate_cash", Unit: "%"},
		},
		store,
	)
}

// NewLendingRatesCollector collects housing lending rates from table F6.
func NewLendingRatesCollector(store driven.MetricStore) *TableCollector {
	return newTableCollector(
		"rba-lending-rates",
		"https://www.rba.gov.au/statistics/tables/csv/f6-data.csv",
		map[string]seriesSpec{
			"FLRHOOVS": {Metric: "housing_lending_rate_variable_owner_occupier", Unit: "%"},
		},
		store,
	)
}

// NewInflationCollector collects CPI measures from table G1.
func NewInflationCollector(store driven.MetricStore) *TableCollector {
	return newTableCollector(
		"rba-inflation",
		"https://www.rba.gov.au/statistics/tables/csv/g1-data.csv",
		map[string]seriesSpec{
			"GCPIAGYP":   {Metric: "inflation_cpi_annual", Unit: "%"},
			"GCPIOCPMTM": {Metric: "inflation_trimmed_mean_annual", Unit: "%"},
		},
		store,
	)
}

func newTableCollector(name, url string, series map[string]seriesSpec, store driven.MetricStore) *TableCollector {
	return &TableCollector{
		name:    name,
		url:     url,
		series:  series,
		store:   store,
		client:  &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Name identifies the collector.
func (c *TableCollector) Name() string { return c.name }

// Source describes the RBA table behind this collector.
func (c *TableCollector) Source() domain.DataSource {
	return domain.DataSource{
		Name:            "Reserve Bank of Australia",
		Kind:            "csv",
		URL:             c.url,
		UpdateFrequency: "monthly",
		Description:     "RBA statistical table CSV.",
	}
}

// Collect fetches the table, parses the configured series and stores the
// observations. It returns the number of observations stored.
func (c *TableCollector) Collect(ctx context.Context) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	body, err := c.fetch(ctx, c.url)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	obs, err := parseTable(body, c.series)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", c.url, err)
	}
	if len(obs) == 0 {
		return 0, fmt.Errorf("no observations in %s", c.url)
	}

	if err := c.store.SaveObservations(ctx, obs); err != nil {
		return 0, fmt.Errorf("store observations: %w", err)
	}

	logger.Info("collector %s stored %d observations", c.name, len(obs))
	return len(obs), nil
}

func (c *TableCollector) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// parseTable reads an RBA statistical table CSV. The tables carry
// several metadata rows (Title, Description, Frequency, Units, Source,
// Publication date, Series ID) followed by one row per date. The
// "Series ID" row names each column; data rows start with a date.
func parseTable(r io.Reader, series map[string]seriesSpec) ([]domain.Observation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Column index -> series spec, resolved from the Series ID row.
	columns := map[int]seriesSpec{}
	var obs []domain.Observation
	now := time.Now()

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 2 {
			continue
		}

		label := strings.TrimSpace(record[0])
		if strings.EqualFold(label, "Series ID") {
			for i := 1; i < len(record); i++ {
				id := strings.TrimSpace(record[i])
				if spec, ok := series[id]; ok {
					columns[i] = spec
				}
			}
			continue
		}

		period, ok := parseRBADate(label)
		if !ok || len(columns) == 0 {
			continue
		}

		for i, spec := range columns {
			if i >= len(record) {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
			if err != nil {
				continue
			}
			obs = append(obs, domain.Observation{
				Metric:      spec.Metric,
				Value:       value,
				Period:      period,
				Source:      "RBA",
				Geography:   "Australia",
				Unit:        spec.Unit,
				CollectedAt: now,
			})
		}
	}

	return obs, nil
}

// parseRBADate accepts the date formats RBA tables use and returns the
// period in "YYYY-MM" form.
func parseRBADate(s string) (string, bool) {
	for _, layout := range []string{"02-Jan-2006", "Jan-2006", "02/01/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01"), true
		}
	}
	return "", false
}
