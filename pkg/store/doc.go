// Package store provides the durable SQLite schema behind the knowledge
// graph and the primitive read/insert/batch operations the graph builder
// composes.
//
// The schema is seven tables (companies, divisions, sources, facilities,
// events, evidence, jobs) created by an idempotent, strictly additive
// bootstrap that is safe to invoke on every startup. Writes that violate a
// foreign-key relationship fail with a referential-integrity error that
// callers detect via IsConstraintViolation and skip.
//
// Every read and write scopes its underlying connection so it is released
// deterministically on every exit path. Reads may run concurrently with each
// other; concurrent ingestion against the same store is not part of the
// contract.
package store
