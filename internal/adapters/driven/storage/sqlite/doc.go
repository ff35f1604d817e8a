// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - MetricStore: Economic observation persistence
//   - DocumentStore: Collected document persistence
//   - ThreadStore: Conversation thread and message persistence
//   - SchedulerStore: Scheduled task state and run history
//
// The package also provides QueryExecutor, which serves ad-hoc read queries
// over a separate connection opened with the query_only pragma so no
// statement routed through it can modify the database.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.yarra/data/yarra.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
