// Package refdata centralizes the static reference data shared by the
// resolver and the graph builder: division abbreviation mappings, city to
// state lookups, the Indian state list used for location matching, the
// generic facility-name suffixes stripped during normalization, and the
// display defaults applied by the query layer.
//
// The built-in tables cover the Motherson group; deployments can extend them
// with a YAML overrides file (see Load).
package refdata

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Display defaults applied by the query layer whenever a field is missing.
const (
	CompanyName = "Motherson"

	DirectoryURL   = "https://www.motherson.com/contact/address-directory"
	DirectoryTitle = "Motherson Address Directory"
	RootURL        = "https://www.motherson.com"
	DocumentTitle  = "Motherson Document"
	CareersURL     = "https://careers.motherson.com"
	CareersTitle   = "Motherson Careers"

	DefaultCountry  = "India"
	DefaultLocation = "India"
	DefaultTimeline = "FY 2024-25"
	DefaultDivision = "Unknown"
)

// Tables holds the reference lookups injected into the resolver and builder.
type Tables struct {
	// Divisions maps upper-cased abbreviations and synonyms to canonical
	// division names. Unmapped names pass through unchanged.
	Divisions map[string]string `yaml:"divisions"`

	// CityStates maps known city names to their state.
	CityStates map[string]string `yaml:"city_states"`

	// States lists the state names recognized during location matching.
	States []string `yaml:"states"`

	// NameSuffixes lists the generic suffixes stripped from facility names
	// during normalization.
	NameSuffixes []string `yaml:"name_suffixes"`

	// DivisionKeywords maps free-text keywords to canonical division names,
	// consulted after the abbreviation table when inferring a division from
	// a loose mention.
	DivisionKeywords map[string]string `yaml:"division_keywords"`
}

// Default returns the built-in reference tables.
func Default() *Tables {
	return &Tables{
		Divisions: map[string]string{
			"MSWIL":     "Wiring Systems",
			"MSW":       "Wiring Systems",
			"WIRING":    "Wiring Systems",
			"PKC":       "Wiring Systems",
			"SMR":       "Vision Systems",
			"VISION":    "Vision Systems",
			"SMP":       "Polymers",
			"POLYMER":   "Polymers",
			"SEATING":   "Seating Systems",
			"LOGISTICS": "Logistics",
		},
		CityStates: map[string]string{
			"Sanand":    "Gujarat",
			"Ahmedabad": "Gujarat",
			"Navagam":   "Gujarat",
			"Pune":      "Maharashtra",
			"Chakan":    "Maharashtra",
			"Mumbai":    "Maharashtra",
			"Chennai":   "Tamil Nadu",
			"Hosur":     "Tamil Nadu",
			"Bangalore": "Karnataka",
			"Bengaluru": "Karnataka",
			"Manesar":   "Haryana",
			"Gurgaon":   "Haryana",
			"Gurugram":  "Haryana",
			"Bawal":     "Haryana",
			"Dharuhera": "Haryana",
			"Noida":     "Uttar Pradesh",
			"Haridwar":  "Uttarakhand",
		},
		States: []string{
			"gujarat", "tamil nadu", "maharashtra", "haryana", "karnataka",
			"uttar pradesh", "rajasthan", "punjab", "telangana",
		},
		NameSuffixes: []string{
			"plant", "facility", "unit", "manufacturing", "factory", "site",
		},
		DivisionKeywords: map[string]string{
			"WIRING":   "Wiring Systems",
			"HARNESS":  "Wiring Systems",
			"VISION":   "Vision Systems",
			"MIRROR":   "Vision Systems",
			"POLYMER":  "Polymers",
			"SEATING":  "Seating Systems",
			"LOGISTIC": "Logistics",
		},
	}
}

// Load reads a YAML overrides file and merges it over the built-in tables.
// Missing sections keep their defaults; map entries are merged key by key,
// list sections replace the default list wholesale.
func Load(path string) (*Tables, error) {
	tables := Default()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference data overrides: %w", err)
	}

	var overrides Tables
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse reference data overrides: %w", err)
	}

	for k, v := range overrides.Divisions {
		tables.Divisions[strings.ToUpper(k)] = v
	}
	for k, v := range overrides.CityStates {
		tables.CityStates[k] = v
	}
	for k, v := range overrides.DivisionKeywords {
		tables.DivisionKeywords[strings.ToUpper(k)] = v
	}
	if len(overrides.States) > 0 {
		tables.States = overrides.States
	}
	if len(overrides.NameSuffixes) > 0 {
		tables.NameSuffixes = overrides.NameSuffixes
	}

	return tables, nil
}

// CanonicalDivision maps an abbreviation or synonym to its canonical
// division name. Names absent from the table pass through unchanged.
func (t *Tables) CanonicalDivision(name string) string {
	if canonical, ok := t.Divisions[strings.ToUpper(name)]; ok {
		return canonical
	}
	return name
}

// StateOf returns the state for a known city, or empty when unknown.
func (t *Tables) StateOf(city string) string {
	return t.CityStates[city]
}

// ExtractCity infers a city by case-insensitive substring match against the
// known city list. Returns empty when no city matches.
func (t *Tables) ExtractCity(text string) string {
	lower := strings.ToLower(text)
	for _, city := range sortedKeys(t.CityStates) {
		if strings.Contains(lower, strings.ToLower(city)) {
			return city
		}
	}
	return ""
}

// InferDivision infers a division from a loose facility mention: first by
// abbreviation match, then by keyword, falling back to DefaultDivision.
func (t *Tables) InferDivision(text string) string {
	upper := strings.ToUpper(text)
	for _, abbr := range sortedKeys(t.Divisions) {
		if strings.Contains(upper, abbr) {
			return t.Divisions[abbr]
		}
	}
	for _, keyword := range sortedKeys(t.DivisionKeywords) {
		if strings.Contains(upper, keyword) {
			return t.DivisionKeywords[keyword]
		}
	}
	return DefaultDivision
}

// sortedKeys keeps lookup iteration deterministic.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CommonState returns the state name contained in both locations, or empty
// when none is shared. Locations are expected lower-cased.
func (t *Tables) CommonState(loc1, loc2 string) string {
	for _, state := range t.States {
		if strings.Contains(loc1, state) && strings.Contains(loc2, state) {
			return state
		}
	}
	return ""
}
