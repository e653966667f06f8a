// Package resolver collapses duplicate facility candidates describing the
// same real-world site before they are committed to the graph.
//
// Resolution is a pure in-memory pass: candidates are partitioned by
// division, normalized, and merged pairwise against the first unmerged
// candidate of each group. Merging never crosses division boundaries and the
// grouping is anchor-relative, not a transitive closure: for a fixed input
// order the result is deterministic, and a candidate that matches an earlier
// anchor is absorbed by it even if it would also match a later one.
package resolver

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/soundprediction/sitegraph/pkg/refdata"
	"github.com/soundprediction/sitegraph/pkg/types"
)

// Merge heuristics
const (
	// MergeThreshold is the minimum token-set Jaccard similarity for a
	// name-similarity merge (rule B).
	MergeThreshold = 0.8

	// MinBareNameLength is the shortest normalized name trusted to merge
	// on name alone when both candidates lack a location (rule A).
	MinBareNameLength = 5
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	punctuationRe = regexp.MustCompile(`[^\w\s]`)
)

// Resolver deduplicates facility candidates using the shared reference
// tables for suffix stripping and state matching.
type Resolver struct {
	tables *refdata.Tables
	logger *slog.Logger
}

// New creates a Resolver. A nil tables falls back to the built-in reference
// data; a nil logger falls back to slog.Default.
func New(tables *refdata.Tables, logger *slog.Logger) *Resolver {
	if tables == nil {
		tables = refdata.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{tables: tables, logger: logger}
}

// NormalizeName lowercases a facility name, collapses whitespace, strips
// punctuation, and removes one trailing generic suffix.
//
//	NormalizeName("Sanand Plant") == "sanand"
func (r *Resolver) NormalizeName(name string) string {
	if name == "" {
		return ""
	}

	name = strings.TrimSpace(strings.ToLower(name))
	name = whitespaceRe.ReplaceAllString(name, " ")
	name = punctuationRe.ReplaceAllString(name, "")

	for _, suffix := range r.tables.NameSuffixes {
		if strings.HasSuffix(name, " "+suffix) {
			name = strings.TrimSpace(name[:len(name)-len(suffix)])
		}
	}

	return name
}

// NormalizeLocation joins the lower-cased city and state into one matchable
// location string.
//
//	NormalizeLocation("Sanand", "Gujarat") == "sanand gujarat"
func (r *Resolver) NormalizeLocation(city, state string) string {
	parts := make([]string, 0, 2)
	if city != "" {
		parts = append(parts, strings.TrimSpace(strings.ToLower(city)))
	}
	if state != "" {
		parts = append(parts, strings.TrimSpace(strings.ToLower(state)))
	}
	return strings.Join(parts, " ")
}

// TokenSimilarity returns the Jaccard similarity of the whitespace token
// sets of two strings. Any pair involving an empty token set scores 0.
func TokenSimilarity(name1, name2 string) float64 {
	if name1 == "" || name2 == "" {
		return 0.0
	}

	tokens1 := tokenSet(name1)
	tokens2 := tokenSet(name2)
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range tokens1 {
		if tokens2[token] {
			intersection++
		}
	}
	union := len(tokens1) + len(tokens2) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(strings.ToLower(s)) {
		set[token] = true
	}
	return set
}

// shouldMerge decides whether two candidates describe the same site.
//
// Rule A: identical non-empty normalized names, with either overlapping
// location tokens or, when both locations are empty, a normalized name
// longer than MinBareNameLength.
//
// Rule B: token-set Jaccard of the normalized names at or above
// MergeThreshold, both locations non-empty, and both naming a common state.
func (r *Resolver) shouldMerge(name1, loc1, name2, loc2 string) bool {
	norm1 := r.NormalizeName(name1)
	norm2 := r.NormalizeName(name2)

	if norm1 == norm2 && norm1 != "" {
		if loc1 == "" || loc2 == "" {
			return len(norm1) > MinBareNameLength
		}
		if tokensOverlap(loc1, loc2) {
			return true
		}
	}

	if TokenSimilarity(norm1, norm2) >= MergeThreshold {
		if loc1 != "" && loc2 != "" && r.tables.CommonState(loc1, loc2) != "" {
			return true
		}
	}

	return false
}

func tokensOverlap(a, b string) bool {
	setA := tokenSet(a)
	for token := range tokenSet(b) {
		if setA[token] {
			return true
		}
	}
	return false
}

// Resolve deduplicates a candidate list. Candidates are partitioned by
// division name; within each partition a single forward pass groups every
// later candidate that matches the first unmerged one, then merges each
// group into one record. Singleton groups pass through unchanged.
func (r *Resolver) Resolve(candidates []types.FacilityCandidate) []types.FacilityCandidate {
	if len(candidates) == 0 {
		return []types.FacilityCandidate{}
	}

	// Partition by division, preserving first-seen order.
	var order []string
	partitions := make(map[string][]types.FacilityCandidate)
	for _, c := range candidates {
		division := c.Division
		if division == "" {
			division = refdata.DefaultDivision
		}
		if _, ok := partitions[division]; !ok {
			order = append(order, division)
		}
		partitions[division] = append(partitions[division], c)
	}

	resolved := make([]types.FacilityCandidate, 0, len(candidates))
	for _, division := range order {
		group := partitions[division]
		merged := make([]bool, len(group))

		for i := range group {
			if merged[i] {
				continue
			}

			cluster := []types.FacilityCandidate{group[i]}
			loc1 := r.NormalizeLocation(group[i].City, group[i].State)

			for j := i + 1; j < len(group); j++ {
				if merged[j] {
					continue
				}
				loc2 := r.NormalizeLocation(group[j].City, group[j].State)
				if r.shouldMerge(group[i].Name, loc1, group[j].Name, loc2) {
					cluster = append(cluster, group[j])
					merged[j] = true
				}
			}

			resolved = append(resolved, r.mergeCluster(cluster))
		}
	}

	r.logger.Info("resolved facility candidates",
		"in", len(candidates), "out", len(resolved))
	return resolved
}

// mergeCluster folds a group of duplicates into one candidate: the first
// candidate's fields form the base, later candidates fill empty fields,
// dates keep the earliest value, and confidence keeps the maximum.
func (r *Resolver) mergeCluster(cluster []types.FacilityCandidate) types.FacilityCandidate {
	merged := cluster[0]
	if len(cluster) == 1 {
		return merged
	}

	for _, c := range cluster[1:] {
		if merged.Name == "" {
			merged.Name = c.Name
		}
		if merged.Division == "" {
			merged.Division = c.Division
		}
		if merged.City == "" {
			merged.City = c.City
		}
		if merged.State == "" {
			merged.State = c.State
		}
		if merged.Country == "" {
			merged.Country = c.Country
		}
		if merged.Status == "" {
			merged.Status = c.Status
		}
		if merged.ExpansionType == "" {
			merged.ExpansionType = c.ExpansionType
		}
		if c.Date != "" && (merged.Date == "" || c.Date < merged.Date) {
			merged.Date = c.Date
		}
		if c.Confidence > merged.Confidence {
			merged.Confidence = c.Confidence
		}
	}

	merged.WasMerged = true
	merged.MergeCount = len(cluster)
	return merged
}
