package sitegraph

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/soundprediction/sitegraph/pkg/refdata"
	"github.com/soundprediction/sitegraph/pkg/types"
)

// Display confidences attached to query rows that carry none of their own.
const (
	facilityConfidence  = 0.9
	expansionConfidence = 0.7
	jobConfidence       = 0.85
)

// ListFacilities returns one consolidated record per facility. Status and
// expansion type are derived in memory from the facility's event history;
// the optional status filter is applied after derivation.
func (c *Client) ListFacilities(ctx context.Context, filter FacilityFilter) ([]types.FacilityRecord, error) {
	query := `
	SELECT
		f.id,
		f.name,
		f.city,
		f.state,
		f.country,
		d.name,
		MIN(e.event_date),
		MAX(e.event_date),
		(SELECT s.url FROM sources s JOIN evidence ev ON ev.source_id = s.id
		 WHERE ev.entity_id = f.id AND ev.entity_type = 'FACILITY' LIMIT 1),
		(SELECT s.title FROM sources s JOIN evidence ev ON ev.source_id = s.id
		 WHERE ev.entity_id = f.id AND ev.entity_type = 'FACILITY' LIMIT 1),
		(SELECT s.publish_date FROM sources s JOIN evidence ev ON ev.source_id = s.id
		 WHERE ev.entity_id = f.id AND ev.entity_type = 'FACILITY' LIMIT 1)
	FROM facilities f
	LEFT JOIN divisions d ON f.division_id = d.id
	LEFT JOIN events e ON f.id = e.facility_id
	WHERE 1=1`

	args := []any{}
	if filter.Division != "" {
		query += " AND d.name = ?"
		args = append(args, filter.Division)
	}
	if filter.State != "" {
		query += " AND f.state = ?"
		args = append(args, filter.State)
	}
	query += " GROUP BY f.id, f.name, f.city, f.state, f.country, d.name ORDER BY f.id"

	rows, err := c.store.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query facilities: %w", err)
	}
	defer rows.Close()

	records := make([]types.FacilityRecord, 0)
	for rows.Next() {
		var (
			id                                    int64
			name                                  string
			city, state, country, division        sql.NullString
			firstDate, lastDate                   sql.NullString
			evidenceURL, evidenceTitle, published sql.NullString
		)
		if err := rows.Scan(&id, &name, &city, &state, &country, &division,
			&firstDate, &lastDate, &evidenceURL, &evidenceTitle, &published); err != nil {
			return nil, fmt.Errorf("failed to scan facility row: %w", err)
		}

		records = append(records, types.FacilityRecord{
			ID:            id,
			Name:          name,
			Facility:      name,
			City:          city.String,
			State:         state.String,
			Country:       orDefault(country.String, refdata.DefaultCountry),
			Division:      orDefault(division.String, refdata.DefaultDivision),
			FirstDate:     firstDate.String,
			LastEventDate: lastDate.String,
			URL:           orDefault(evidenceURL.String, refdata.DirectoryURL),
			SourceTitle:   orDefault(evidenceTitle.String, refdata.DirectoryTitle),
			PublishDate:   published.String,
			Confidence:    facilityConfidence,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read facility rows: %w", err)
	}

	eventsByFacility, err := c.facilityEvents(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]types.FacilityRecord, 0, len(records))
	for _, rec := range records {
		events := eventsByFacility[rec.ID]
		rec.Status = string(types.LatestStatus(events))
		rec.ExpansionType = string(types.FirstExpansionType(events))

		if filter.Status != "" && !strings.EqualFold(rec.Status, filter.Status) {
			continue
		}
		results = append(results, rec)
	}

	c.logger.Info("Listed facilities", "count", len(results))
	return results, nil
}

// facilityEvents loads every facility's event history in insertion order,
// keyed by facility id.
func (c *Client) facilityEvents(ctx context.Context) (map[int64][]types.Event, error) {
	rows, err := c.store.Query(ctx, `
	SELECT facility_id,
	       COALESCE(event_type, ''),
	       COALESCE(event_date, ''),
	       COALESCE(status, ''),
	       COALESCE(expansion_type, ''),
	       COALESCE(confidence, 0)
	FROM events
	ORDER BY facility_id, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	byFacility := make(map[int64][]types.Event)
	for rows.Next() {
		var e types.Event
		if err := rows.Scan(&e.FacilityID, &e.EventType, &e.EventDate,
			&e.Status, &e.ExpansionType, &e.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		byFacility[e.FacilityID] = append(byFacility[e.FacilityID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event rows: %w", err)
	}
	return byFacility, nil
}

// ListExpansions returns expansion and announcement events, newest first.
// Rows explicitly tagged with an expansion type are listed ahead of rows
// inferred from a planned or under-construction status, and the first row
// per facility identity key wins deduplication.
func (c *Client) ListExpansions(ctx context.Context, filter ExpansionFilter) ([]types.ExpansionRecord, error) {
	tagged := `
	SELECT DISTINCT
		f.name, f.city, f.state, d.name,
		e.event_date, e.expansion_type, e.status, e.confidence,
		s.url, s.title, s.publish_date
	FROM events e
	JOIN facilities f ON e.facility_id = f.id
	LEFT JOIN divisions d ON f.division_id = d.id
	LEFT JOIN evidence ev ON ev.entity_id = f.id AND ev.entity_type = 'FACILITY'
	LEFT JOIN sources s ON ev.source_id = s.id
	WHERE e.expansion_type IS NOT NULL`

	announced := `
	SELECT DISTINCT
		f.name, f.city, f.state, d.name,
		e.event_date, 'expansion', e.status, e.confidence,
		s.url, s.title, s.publish_date
	FROM events e
	JOIN facilities f ON e.facility_id = f.id
	LEFT JOIN divisions d ON f.division_id = d.id
	LEFT JOIN evidence ev ON ev.entity_id = f.id AND ev.entity_type = 'FACILITY'
	LEFT JOIN sources s ON ev.source_id = s.id
	WHERE e.status IN ('planned', 'under-construction')`

	args := []any{}
	if filter.DateFrom != "" {
		clause := " AND (e.event_date >= ? OR e.event_date IS NULL)"
		tagged += clause
		announced += clause
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		clause := " AND (e.event_date <= ? OR e.event_date IS NULL)"
		tagged += clause
		announced += clause
		args = append(args, filter.DateTo)
	}
	tagged += " ORDER BY e.event_date DESC"
	announced += " ORDER BY e.event_date DESC"

	taggedRows, err := c.queryExpansionRows(ctx, tagged, args)
	if err != nil {
		return nil, err
	}
	announcedRows, err := c.queryExpansionRows(ctx, announced, args)
	if err != nil {
		return nil, err
	}

	seen := make(map[types.Key]bool)
	results := make([]types.ExpansionRecord, 0, len(taggedRows)+len(announcedRows))
	for _, rec := range append(taggedRows, announcedRows...) {
		key := types.FacilityKey(rec.Facility, rec.City)
		if key.Empty() || seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, rec)
	}

	c.logger.Info("Listed expansions", "count", len(results))
	return results, nil
}

// queryExpansionRows runs one arm of the expansion query and applies the
// display defaults per row.
func (c *Client) queryExpansionRows(ctx context.Context, query string, args []any) ([]types.ExpansionRecord, error) {
	rows, err := c.store.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expansions: %w", err)
	}
	defer rows.Close()

	records := make([]types.ExpansionRecord, 0)
	for rows.Next() {
		var (
			name                              string
			city, state, division             sql.NullString
			eventDate, expansionType, status  sql.NullString
			confidence                        sql.NullFloat64
			sourceURL, sourceTitle, publishOn sql.NullString
		)
		if err := rows.Scan(&name, &city, &state, &division, &eventDate,
			&expansionType, &status, &confidence,
			&sourceURL, &sourceTitle, &publishOn); err != nil {
			return nil, fmt.Errorf("failed to scan expansion row: %w", err)
		}

		conf := confidence.Float64
		if conf == 0 {
			conf = expansionConfidence
		}

		records = append(records, types.ExpansionRecord{
			Facility:      name,
			City:          city.String,
			State:         state.String,
			Division:      orDefault(division.String, refdata.DefaultDivision),
			EventDate:     eventDate.String,
			Timeline:      orDefault(eventDate.String, refdata.DefaultTimeline),
			ExpansionType: orDefault(expansionType.String, string(types.ExpansionGreenfield)),
			Status:        orDefault(status.String, string(types.StatusPlanned)),
			Confidence:    conf,
			URL:           orDefault(sourceURL.String, refdata.RootURL),
			SourceTitle:   orDefault(sourceTitle.String, refdata.DocumentTitle),
			PublishDate:   publishOn.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expansion rows: %w", err)
	}
	return records, nil
}

// ListJobs returns job postings, most recent first with undated postings
// last. factoryOnly restricts the result to factory-floor roles.
func (c *Client) ListJobs(ctx context.Context, factoryOnly bool) ([]types.JobRecord, error) {
	query := `
	SELECT
		j.id, j.title, j.location, j.posted_date, j.description,
		f.name, d.name, j.is_factory_role, s.url, s.title
	FROM jobs j
	LEFT JOIN facilities f ON j.facility_id = f.id
	LEFT JOIN divisions d ON j.division_id = d.id
	LEFT JOIN sources s ON j.source_id = s.id
	WHERE 1=1`

	if factoryOnly {
		query += " AND j.is_factory_role = 1"
	}
	query += " ORDER BY j.posted_date IS NULL, j.posted_date DESC"

	rows, err := c.store.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	results := make([]types.JobRecord, 0)
	for rows.Next() {
		var (
			id                         int64
			title                      string
			location, postedDate, desc sql.NullString
			facility, division         sql.NullString
			isFactory                  int
			sourceURL, sourceTitle     sql.NullString
		)
		if err := rows.Scan(&id, &title, &location, &postedDate, &desc,
			&facility, &division, &isFactory, &sourceURL, &sourceTitle); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}

		results = append(results, types.JobRecord{
			ID:            id,
			Title:         title,
			Location:      orDefault(location.String, refdata.DefaultLocation),
			PostedDate:    postedDate.String,
			Description:   desc.String,
			Facility:      orDefault(facility.String, "Multiple Locations"),
			Division:      orDefault(division.String, refdata.DefaultDivision),
			IsFactoryRole: isFactory != 0,
			URL:           orDefault(sourceURL.String, refdata.CareersURL),
			SourceTitle:   orDefault(sourceTitle.String, refdata.CareersTitle),
			Confidence:    jobConfidence,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read job rows: %w", err)
	}

	c.logger.Info("Listed jobs", "count", len(results))
	return results, nil
}

// orDefault substitutes fallback for an empty display value.
func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
