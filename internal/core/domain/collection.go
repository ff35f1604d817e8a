package domain

import "time"

// CollectionStatus is the outcome of a data collection run.
type CollectionStatus string

// Collection outcomes.
const (
	// CollectionSuccess means every source was collected.
	CollectionSuccess CollectionStatus = "success"

	// CollectionPartial means some sources failed.
	CollectionPartial CollectionStatus = "partial"

	// CollectionFailed means no source produced records.
	CollectionFailed CollectionStatus = "failed"
)

// CollectionResult summarises one collection run for a handler's sources.
type CollectionResult struct {
	// Handler is the handler whose sources were collected.
	Handler string

	// Status is the run outcome.
	Status CollectionStatus

	// StartedAt and CompletedAt bound the run.
	StartedAt   time.Time
	CompletedAt time.Time

	// Records is the number of observations and documents stored.
	Records int

	// Errors lists per-source failure messages, if any.
	Errors []string
}
