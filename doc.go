// Package sitegraph is a knowledge-graph construction and entity-resolution
// engine for manufacturing footprints. It ingests heterogeneous, untrusted
// extracted items produced by upstream collectors (facility mentions,
// structured directory rows, job postings), merges duplicate real-world
// facilities, maintains a normalized relational graph with source-evidence
// traceability, and answers the three query families used by downstream
// consumers: facilities, expansions, and jobs.
//
// Scraping, entity spotting, vector retrieval, and answer generation are
// external collaborators; this package owns only the graph itself.
//
// Basic usage:
//
//	st, err := store.Open("sitegraph.db")
//	if err != nil { ... }
//	client, err := sitegraph.NewClient(st, nil, nil)
//	if err != nil { ... }
//	stats, err := client.Ingest(ctx, items)
//	facilities, err := client.ListFacilities(ctx, sitegraph.FacilityFilter{State: "Gujarat"})
package sitegraph
