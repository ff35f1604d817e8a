package driven

import "time"

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type
// conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value. Returns "" if the key is
	// missing or not a string.
	GetString(key string) string

	// GetInt retrieves an integer value. Returns 0 if the key is
	// missing or not an integer.
	GetInt(key string) int

	// GetFloat retrieves a float value. Integer values are widened.
	// Returns 0 if the key is missing or not numeric.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value. Returns false if the key is
	// missing or not a boolean.
	GetBool(key string) bool

	// GetDuration retrieves a duration value stored as a string like
	// "15s". Returns 0 if the key is missing or unparsable.
	GetDuration(key string) time.Duration

	// GetStringSlice retrieves a string slice value. Returns nil if the
	// key is missing or not a slice.
	GetStringSlice(key string) []string

	// Set stores a configuration value. The value is persisted
	// immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
