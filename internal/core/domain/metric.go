package domain

import "time"

// Observation is one time-stamped value of a tracked metric.
type Observation struct {
	// Metric is the metric name, e.g. "interest_rate_cash".
	Metric string

	// Value is the numeric observation.
	Value float64

	// ValueText holds the value for non-numeric observations.
	ValueText string

	// Period is the reporting period in "YYYY-MM" form.
	Period string

	// Source is the publishing organisation, e.g. "RBA", "ABS".
	Source string

	// Geography is the region the observation covers.
	Geography string

	// Unit is the unit of measurement, e.g. "%", "$", "number".
	Unit string

	// CollectedAt is when the observation was stored.
	CollectedAt time.Time
}

// SeriesRange bounds a time-series request.
type SeriesRange struct {
	// From is the earliest period to include, "YYYY-MM". Empty means
	// unbounded.
	From string

	// To is the latest period to include, "YYYY-MM". Empty means latest.
	To string

	// Limit caps the number of observations. Zero means store default.
	Limit int
}

// MetricSummary describes the stored coverage of one metric.
type MetricSummary struct {
	// Metric is the metric name.
	Metric string

	// Count is the number of stored observations.
	Count int

	// EarliestPeriod and LatestPeriod bound the stored range.
	EarliestPeriod string
	LatestPeriod   string

	// LatestValue is the most recent observation value.
	LatestValue float64

	// Source is the publishing organisation.
	Source string

	// Unit is the unit of measurement.
	Unit string
}
