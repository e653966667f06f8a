package types

import (
	"errors"
	"strings"
	"time"
)

// Validation errors
var (
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrEmptySourceURL  = errors.New("source url cannot be empty")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrInvalidStatus   = errors.New("invalid facility status")
	ErrBadConfidence   = errors.New("confidence must be between 0 and 1")
	ErrNoCandidates    = errors.New("item carries no candidates")
	ErrInvalidItem     = errors.New("invalid extracted item")
	ErrUnknownCategory = errors.New("unknown entity category")
)

// Status is the lifecycle state asserted about a facility by an event.
type Status string

const (
	StatusOperational       Status = "operational"
	StatusUnderConstruction Status = "under-construction"
	StatusPlanned           Status = "planned"
)

// Valid reports whether s is one of the known facility statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOperational, StatusUnderConstruction, StatusPlanned:
		return true
	}
	return false
}

// ExpansionType marks whether an event describes a newly built site or an
// extension of an existing one.
type ExpansionType string

const (
	ExpansionGreenfield ExpansionType = "greenfield"
	ExpansionBrownfield ExpansionType = "brownfield"
)

// SourceType distinguishes the fetch pipeline a source came from.
type SourceType string

const (
	SourceTypeWeb SourceType = "web"
	SourceTypePDF SourceType = "pdf"
)

// Entity categories produced by the upstream entity spotter.
const (
	CategoryFacilities = "facilities"
	CategoryJobTitles  = "job_titles"
)

// EntityTypeFacility is the entity_type tag used on evidence rows linking a
// source to a facility.
const EntityTypeFacility = "FACILITY"

// DateLayout is the wire format for all loosely-structured dates carried by
// extracted items (event dates, publish dates, posted dates).
const DateLayout = "2006-01-02"

// ValidateDate checks an optional wire date. Empty is allowed; anything else
// must parse as YYYY-MM-DD.
func ValidateDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// FacilityKey is the operational identity of a facility: its
// case-insensitive, whitespace-trimmed (name, city) pair. The ingestion
// upsert, the expansion dedup, and the resolver all derive identity through
// this one function.
type Key struct {
	Name string
	City string
}

// FacilityKey derives the shared facility identity key.
func FacilityKey(name, city string) Key {
	return Key{
		Name: strings.ToLower(strings.TrimSpace(name)),
		City: strings.ToLower(strings.TrimSpace(city)),
	}
}

// Empty reports whether the key carries no identifying information.
func (k Key) Empty() bool {
	return k.Name == "" && k.City == ""
}

// FacilityCandidate is a facility assertion extracted from one source,
// before resolution and commit.
type FacilityCandidate struct {
	Name          string        `json:"name" mapstructure:"name"`
	Division      string        `json:"division,omitempty" mapstructure:"division"`
	City          string        `json:"city,omitempty" mapstructure:"city"`
	State         string        `json:"state,omitempty" mapstructure:"state"`
	Country       string        `json:"country,omitempty" mapstructure:"country"`
	Status        Status        `json:"status,omitempty" mapstructure:"status"`
	ExpansionType ExpansionType `json:"expansion_type,omitempty" mapstructure:"expansion_type"`
	Date          string        `json:"date,omitempty" mapstructure:"date"`
	Confidence    float64       `json:"confidence,omitempty" mapstructure:"confidence"`

	// Set by the resolver when duplicate candidates are collapsed.
	WasMerged  bool `json:"was_merged,omitempty" mapstructure:"was_merged"`
	MergeCount int  `json:"merge_count,omitempty" mapstructure:"merge_count"`
}

// Validate checks the candidate before it is converted to rows.
func (f *FacilityCandidate) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if f.Status != "" && !f.Status.Valid() {
		return ErrInvalidStatus
	}
	if err := ValidateDate(f.Date); err != nil {
		return err
	}
	if f.Confidence < 0 || f.Confidence > 1 {
		return ErrBadConfidence
	}
	return nil
}

// JobCandidate is a job posting extracted from one source.
type JobCandidate struct {
	Title         string `json:"title" mapstructure:"title"`
	Location      string `json:"location,omitempty" mapstructure:"location"`
	PostedDate    string `json:"posted_date,omitempty" mapstructure:"posted_date"`
	Description   string `json:"description,omitempty" mapstructure:"description"`
	IsFactoryRole *bool  `json:"is_factory_role,omitempty" mapstructure:"is_factory_role"`
}

// Validate checks the candidate before it is converted to rows.
func (j *JobCandidate) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return ErrEmptyTitle
	}
	return ValidateDate(j.PostedDate)
}

// EntityMention is a loose free-text entity candidate spotted upstream.
type EntityMention struct {
	Text     string `json:"text" mapstructure:"text"`
	Start    int    `json:"start,omitempty" mapstructure:"start"`
	End      int    `json:"end,omitempty" mapstructure:"end"`
	Location string `json:"location,omitempty" mapstructure:"location"`
}

// ExtractedItem is one unit of collector output: a fetched source document
// plus the candidates extracted from it. Exactly one of the candidate
// families is normally populated.
type ExtractedItem struct {
	SourceURL   string     `json:"source_url" mapstructure:"source_url"`
	SourceTitle string     `json:"source_title,omitempty" mapstructure:"source_title"`
	FetchedAt   time.Time  `json:"fetched_at,omitempty" mapstructure:"fetched_at"`
	MimeType    string     `json:"mime_type,omitempty" mapstructure:"mime_type"`
	PublishDate string     `json:"publish_date,omitempty" mapstructure:"publish_date"`
	SourceType  SourceType `json:"source_type,omitempty" mapstructure:"source_type"`

	StructuredFacilities []FacilityCandidate        `json:"structured_facilities,omitempty" mapstructure:"structured_facilities"`
	StructuredJobs       []JobCandidate             `json:"structured_jobs,omitempty" mapstructure:"structured_jobs"`
	Entities             map[string][]EntityMention `json:"entities,omitempty" mapstructure:"entities"`
}

// Validate checks the item envelope. Candidate-level validation happens per
// candidate so one malformed candidate does not drop its siblings.
func (i *ExtractedItem) Validate() error {
	if strings.TrimSpace(i.SourceURL) == "" {
		return ErrEmptySourceURL
	}
	return ValidateDate(i.PublishDate)
}

// IngestStats reports how many rows of each kind an ingestion batch touched.
// The counts are observability only; they are not row deltas.
type IngestStats struct {
	Divisions  int `json:"divisions"`
	Facilities int `json:"facilities"`
	Events     int `json:"events"`
	Jobs       int `json:"jobs"`
	Sources    int `json:"sources"`
}
