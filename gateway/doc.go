// Package gateway is the shard query boundary: a small keyed-record client
// for the PostgREST-style store that holds the portal's sharded tables.
//
// # Architecture boundaries
//
// Every operation validates its table name against a fixed allow-list before
// any network access; an out-of-list table fails fast with
// [ErrForbiddenTable] and performs no I/O. The allow-list is built once at
// construction and never mutated, so concurrent reads need no locking.
//
// FetchOne only succeeds on exactly one matching row. Zero rows is
// [ErrNotFound]; more than one is [ErrAmbiguousMatch] — an ambiguous record
// must never partially authenticate anyone. Transport failures, timeouts,
// and malformed responses surface as [*StoreError], deliberately distinct
// from not-found so callers can tell "shard said no" from "shard unreachable".
//
// # What this package must NOT do
//
//   - Retry. Callers decide whether a failed shard matters.
//   - Interpret record fields. Records pass through as untyped maps.
package gateway
