// Package types defines the core data types for the sitegraph knowledge graph.
//
// This package contains the fundamental types used throughout sitegraph:
//   - ExtractedItem: One unit of upstream collector output (a fetched source
//     plus the structured or loose candidates extracted from it)
//   - FacilityCandidate / JobCandidate / EntityMention: Candidate records
//     carried by an item before they are resolved and committed
//   - FacilityRecord / ExpansionRecord / JobRecord: Flat, fully-defaulted
//     rows returned by the query layer
//   - Event / Status / ExpansionType: Append-only facility status assertions
//
// # Facility identity
//
// A facility's operational identity is its case-insensitive (name, city)
// pair. FacilityKey is the single derivation of that key and is used by the
// ingestion upsert path, the expansion dedup, and the resolver alike.
//
// # Validation
//
// Candidate types provide Validate() methods; ingestion drops items that fail
// validation rather than trusting upstream collectors:
//
//	item := &types.ExtractedItem{SourceURL: "https://example.com"}
//	if err := item.Validate(); err != nil {
//	    // Handle validation error
//	}
package types
