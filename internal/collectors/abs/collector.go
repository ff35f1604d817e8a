// Package abs collects Australian Bureau of Statistics data through the
// ABS Data API, which serves SDMX dataflows as CSV.
package abs

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
	// apiBaseURL is the ABS Data API root.
	apiBaseURL = "https://data.api.abs.gov.au/rest/data/"

	// userAgent identifies the collector to the ABS servers.
	userAgent = "Yarra Data Collector/1.0"

	// requestTimeout is the per-request HTTP timeout.
	requestTimeout = 60 * time.Second

	// requestsPerSecond throttles API calls. The unauthenticated ABS API
	// allows a small request budget per minute.
	requestsPerSecond = 0.5
)

// Collector fetches one ABS dataflow as CSV and stores a configured
// column as observations of one metric.
type Collector struct {
	name   string
	path   string // dataflow path and key under apiBaseURL
	metric string
	unit   string
	store  driven.MetricStore

	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewBuildingApprovals collects total dwelling approvals, seasonally
// adjusted, Australia-wide.
func NewBuildingApprovals(store driven.MetricStore) *Collector {
	return newCollector(
		"abs-building-approvals",
		"ABS,BA_SA2,1.0.0/1.TOT.TOT.AUS.M?startPeriod=2020",
		"housing_approvals_total", "number", store)
}

// NewUnemploymentRate collects the monthly seasonally adjusted
// unemployment rate.
func NewUnemploymentRate(store driven.MetricStore) *Collector {
	return newCollector(
		"abs-unemployment",
		"ABS,LF,1.0.0/M13.3.1599.30.AUS.M?startPeriod=2020",
		"unemployment_rate", "%", store)
}

// NewParticipationRate collects the monthly seasonally adjusted labour
// force participation rate.
func NewParticipationRate(store driven.MetricStore) *Collector {
	return newCollector(
		"abs-participation",
		"ABS,LF,1.0.0/M17.3.1599.30.AUS.M?startPeriod=2020",
		"labour_force_participation_rate", "%", store)
}

// NewWeeklyEarnings collects full-time adult average weekly ordinary
// time earnings, published semi-annually.
func NewWeeklyEarnings(store driven.MetricStore) *Collector {
	return newCollector(
		"abs-weekly-earnings",
		"ABS,AWE,1.0.0/1.2.3.10.AUS.Q?startPeriod=2020",
		"fulltime_adult_avg_weekly_ordinary_earnings", "$", store)
}

func newCollector(name, path, metric, unit string, store driven.MetricStore) *Collector {
	return &Collector{
		name:    name,
		path:    path,
		metric:  metric,
		unit:    unit,
		store:   store,
		client:  &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		baseURL: apiBaseURL,
	}
}

// Name identifies the collector.
func (c *Collector) Name() string { return c.name }

// Source describes the dataflow behind this collector.
func (c *Collector) Source() domain.DataSource {
	return domain.DataSource{
		Name:            "Australian Bureau of Statistics",
		Kind:            "api",
		URL:             c.baseURL + c.path,
		UpdateFrequency: "monthly",
		Description:     "ABS Data API dataflow.",
	}
}

// Collect fetches the dataflow and stores its observations. It returns
// the number of observations stored.
func (c *Collector) Collect(ctx context.Context) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.sdmx.data+csv")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", c.name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch %s: HTTP %d", c.name, resp.StatusCode)
	}

	obs, err := c.parse(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", c.name, err)
	}
	if len(obs) == 0 {
		return 0, fmt.Errorf("no observations in %s", c.name)
	}

	if err := c.store.SaveObservations(ctx, obs); err != nil {
		return 0, fmt.Errorf("store observations: %w", err)
	}

	logger.Info("collector %s stored %d observations", c.name, len(obs))
	return len(obs), nil
}

// parse reads SDMX-CSV: a header row naming the columns, then one row
// per observation. Only TIME_PERIOD and OBS_VALUE matter here.
func (c *Collector) parse(r io.Reader) ([]domain.Observation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	timeCol, valueCol := -1, -1
	for i, col := range header {
		switch strings.ToUpper(strings.TrimSpace(col)) {
		case "TIME_PERIOD":
			timeCol = i
		case "OBS_VALUE":
			valueCol = i
		}
	}
	if timeCol < 0 || valueCol < 0 {
		return nil, fmt.Errorf("missing TIME_PERIOD or OBS_VALUE column")
	}

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
		if timeCol >= len(record) || valueCol >= len(record) {
			continue
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(record[valueCol]), 64)
		if err != nil {
			continue
		}
		period, ok := normalisePeriod(strings.TrimSpace(record[timeCol]))
		if !ok {
			continue
		}

		obs = append(obs, domain.Observation{
			Metric:      c.metric,
			Value:       value,
			Period:      period,
			Source:      "ABS",
			Geography:   "Australia",
			Unit:        c.unit,
			CollectedAt: now,
		})
	}
	return obs, nil
}

// normalisePeriod converts SDMX time periods ("2025-07", "2025-Q2",
// "2025") to the store's "YYYY-MM" form.
func normalisePeriod(s string) (string, bool) {
	switch {
	case len(s) == 7 && s[4] == '-' && s[5] != 'Q':
		return s, true
	case len(s) == 7 && s[5] == 'Q':
		q, err := strconv.Atoi(s[6:])
		if err != nil || q < 1 || q > 4 {
			return "", false
		}
		return fmt.Sprintf("%s-%02d", s[:4], q*3), true
	case len(s) == 4:
		if _, err := strconv.Atoi(s); err != nil {
			return "", false
		}
		return s + "-12", true
	}
	return "", false
}
