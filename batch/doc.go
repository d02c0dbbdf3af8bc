// Package batch derives a student's batch (year-of-study shard) from a roll
// number and routes batches to their backing tables.
//
// Everything in this package is pure: classification and routing are table
// lookups built once from configuration, with no I/O and no global clock.
// Signup and login both classify through the same [Classifier] instance, so
// the insertion shard and the lookup shard always agree.
package batch
