// Package campusauth resolves campus portal logins against year-sharded
// record tables and routes data access to the right shard.
//
// A single identifier box serves four user populations: students sign in by
// roll number or email, teachers and admins by username, and parents by the
// contact address stored on a student row. The engine classifies
// roll-number-shaped identifiers into an intake batch, probes the matching
// shard first, then walks the remaining strategies in fixed precedence
// order until exactly one row matches and its password verifies.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// campusauth is the public surface. It exposes [Engine], [Builder],
// [Config], and value types (Identity, MetricsSnapshot, AuditEvent). Flow
// orchestration lives under internal/ and is never exported; batch
// classification, the record gateway, password hashing, sessions, and
// tokens live in importable sub-packages with no dependency back on the
// root.
//
// # What this package must NOT do
//
//   - Return credential material from any method. Stored hashes stay inside
//     the resolve flow.
//   - Reveal through its error surface whether an identifier exists. A wrong
//     password and an unknown identifier are the same failure.
//   - Query a table outside the configured allow-list, under any input.
package campusauth
