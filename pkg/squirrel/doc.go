// Package squirrel implements an on-disk memoization cache: a key plus a
// value-producing function, persisted across runs, with TTL-based freshness
// and optional session-scoped entries that are cleaned up on Close.
package squirrel
