package file

import (
	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
)

// Configuration keys recognised in config.toml.
const (
	KeyProvider           = "ai.provider"
	KeyRelevanceThreshold = "router.threshold"
	KeyPerCallTimeout     = "dispatch.timeout"
	KeyMaxConcurrency     = "dispatch.max_concurrency"
	KeyQueryMaxRows       = "query.max_rows"
	KeyQueryTimeout       = "query.timeout"
	KeyQueryDenyList      = "query.deny_list"
	KeySchedulerEnabled   = "scheduler.enabled"
	KeyCollectionInterval = "scheduler.collection_interval"
)

// LoadSettings maps the config store's keys onto domain.Settings,
// starting from the documented defaults. Unset keys keep their defaults;
// set keys override.
func LoadSettings(store driven.ConfigStore) domain.Settings {
	settings := domain.DefaultSettings()

	if provider := store.GetString(KeyProvider); provider != "" {
		settings.Provider = domain.AIProvider(provider)
	}
	if _, ok := store.Get(KeyRelevanceThreshold); ok {
		settings.RelevanceThreshold = store.GetFloat(KeyRelevanceThreshold)
	}
	if d := store.GetDuration(KeyPerCallTimeout); d > 0 {
		settings.PerCallTimeout = d
	}
	if _, ok := store.Get(KeyMaxConcurrency); ok {
		settings.MaxConcurrency = store.GetInt(KeyMaxConcurrency)
	}

	if rows := store.GetInt(KeyQueryMaxRows); rows > 0 {
		settings.Query.MaxRows = rows
	}
	if d := store.GetDuration(KeyQueryTimeout); d > 0 {
		settings.Query.Timeout = d
	}
	if deny := store.GetStringSlice(KeyQueryDenyList); deny != nil {
		settings.Query.DenyList = deny
	}

	if _, ok := store.Get(KeySchedulerEnabled); ok {
		settings.Scheduler.Enabled = store.GetBool(KeySchedulerEnabled)
	}
	if d := store.GetDuration(KeyCollectionInterval); d > 0 {
		task := settings.Scheduler.TaskConfigs[domain.TaskIDCollection]
		task.Interval = d
		task.Enabled = true
		settings.Scheduler.TaskConfigs[domain.TaskIDCollection] = task
	}

	return settings
}
