// Package services implements the core orchestration logic: the handler
// registry, the relevance router, the dispatch coordinator, the safe
// query gateway, the response synthesizer and the collection scheduler.
// Services depend only on domain types and port interfaces.
package services
