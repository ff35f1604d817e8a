// Package file provides file-based configuration storage using TOML.
//
// Configuration lives at ~/.yarra/config.toml. Nested TOML tables are
// flattened into dot-notation keys, so [query] max_rows = 500 is read as
// "query.max_rows". LoadSettings maps the recognised keys onto
// domain.Settings, and Watcher reloads the store when the file changes
// on disk.
package file
