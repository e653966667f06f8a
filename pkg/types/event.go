package types

// Event is one append-only status assertion about a facility. Events are
// never updated or deleted; a facility accumulates one per ingestion
// assertion.
type Event struct {
	ID            int64         `json:"id"`
	FacilityID    int64         `json:"facility_id"`
	EventType     string        `json:"event_type"`
	EventDate     string        `json:"event_date,omitempty"`
	Status        Status        `json:"status"`
	ExpansionType ExpansionType `json:"expansion_type,omitempty"`
	Confidence    float64       `json:"confidence"`
}

// LatestStatus derives a facility's current status from its events ordered
// by event_date ascending (undated events first). The status of the most
// recent event wins; ties between equal dates break arbitrarily on order.
// An empty event list yields StatusOperational.
func LatestStatus(events []Event) Status {
	status := StatusOperational
	latest := ""
	for _, e := range events {
		if e.Status == "" {
			continue
		}
		if e.EventDate >= latest {
			latest = e.EventDate
			status = e.Status
		}
	}
	return status
}

// FirstExpansionType returns the first non-empty expansion_type across the
// facility's events, or empty when none carries one.
func FirstExpansionType(events []Event) ExpansionType {
	for _, e := range events {
		if e.ExpansionType != "" {
			return e.ExpansionType
		}
	}
	return ""
}
