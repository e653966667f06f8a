package types

// FacilityRecord is one row of the ListFacilities query family. Every
// display field is defaulted before it leaves the engine; downstream
// consumers never see a null.
type FacilityRecord struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Facility      string  `json:"facility"` // alias of Name kept for downstream consumers
	City          string  `json:"city"`
	State         string  `json:"state"`
	Country       string  `json:"country"`
	Division      string  `json:"division"`
	FirstDate     string  `json:"first_date"`
	LastEventDate string  `json:"last_event_date"`
	Status        string  `json:"status"`
	ExpansionType string  `json:"expansion_type"`
	URL           string  `json:"url"`
	SourceTitle   string  `json:"source_title"`
	PublishDate   string  `json:"publish_date"`
	Confidence    float64 `json:"confidence"`
}

// ExpansionRecord is one row of the ListExpansions query family.
type ExpansionRecord struct {
	Facility      string  `json:"facility"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	Division      string  `json:"division"`
	EventDate     string  `json:"event_date"`
	Timeline      string  `json:"timeline"`
	ExpansionType string  `json:"expansion_type"`
	Status        string  `json:"status"`
	Confidence    float64 `json:"confidence"`
	URL           string  `json:"url"`
	SourceTitle   string  `json:"source_title"`
	PublishDate   string  `json:"publish_date"`
}

// JobRecord is one row of the ListJobs query family.
type JobRecord struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Location      string  `json:"location"`
	PostedDate    string  `json:"posted_date"`
	Description   string  `json:"description"`
	Facility      string  `json:"facility"`
	Division      string  `json:"division"`
	IsFactoryRole bool    `json:"is_factory_role"`
	URL           string  `json:"url"`
	SourceTitle   string  `json:"source_title"`
	Confidence    float64 `json:"confidence"`
}
