package domain

import "time"

// Document is a collected text document, such as a central bank's
// meeting minutes or a statistical release commentary.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Type classifies the document, e.g. "rba_minutes".
	Type string

	// ExternalID is the upstream identifier, e.g. a meeting date.
	ExternalID string

	// Title is the human-readable title.
	Title string

	// SourceURL is where the document was fetched from.
	SourceURL string

	// PublishedAt is the upstream publication time.
	PublishedAt time.Time

	// Content is the full document text.
	Content string

	// Summary is a short abstract, when available.
	Summary string

	// Metadata contains arbitrary key-value pairs, e.g. the cash rate
	// decision extracted from minutes.
	Metadata map[string]any

	// CollectedAt is when the document was stored.
	CollectedAt time.Time
}
