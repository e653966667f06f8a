package types

import (
	"testing"
)

func TestFacilityCandidateValidate(t *testing.T) {
	tests := []struct {
		name    string
		cand    FacilityCandidate
		wantErr error
	}{
		{
			name:    "valid candidate",
			cand:    FacilityCandidate{Name: "Sanand Plant", City: "Sanand", Status: StatusOperational},
			wantErr: nil,
		},
		{
			name:    "empty name",
			cand:    FacilityCandidate{City: "Sanand"},
			wantErr: ErrEmptyName,
		},
		{
			name:    "whitespace name",
			cand:    FacilityCandidate{Name: "   "},
			wantErr: ErrEmptyName,
		},
		{
			name:    "unknown status",
			cand:    FacilityCandidate{Name: "Sanand Plant", Status: "demolished"},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "bad date",
			cand:    FacilityCandidate{Name: "Sanand Plant", Date: "05/01/2024"},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "confidence out of range",
			cand:    FacilityCandidate{Name: "Sanand Plant", Confidence: 1.5},
			wantErr: ErrBadConfidence,
		},
		{
			name:    "empty status allowed",
			cand:    FacilityCandidate{Name: "Sanand Plant"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cand.Validate()
			if err != tt.wantErr {
				t.Errorf("FacilityCandidate.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJobCandidateValidate(t *testing.T) {
	tests := []struct {
		name    string
		job     JobCandidate
		wantErr error
	}{
		{name: "valid job", job: JobCandidate{Title: "Operator", PostedDate: "2024-05-01"}, wantErr: nil},
		{name: "empty title", job: JobCandidate{Location: "Sanand"}, wantErr: ErrEmptyTitle},
		{name: "bad posted date", job: JobCandidate{Title: "Operator", PostedDate: "yesterday"}, wantErr: ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if err != tt.wantErr {
				t.Errorf("JobCandidate.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractedItemValidate(t *testing.T) {
	item := ExtractedItem{SourceURL: "https://example.com"}
	if err := item.Validate(); err != nil {
		t.Errorf("expected valid item, got %v", err)
	}

	item = ExtractedItem{}
	if err := item.Validate(); err != ErrEmptySourceURL {
		t.Errorf("expected ErrEmptySourceURL, got %v", err)
	}

	item = ExtractedItem{SourceURL: "https://example.com", PublishDate: "not-a-date"}
	if err := item.Validate(); err != ErrInvalidDate {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestFacilityKey(t *testing.T) {
	tests := []struct {
		name string
		city string
		want Key
	}{
		{"Sanand Plant", "Sanand", Key{Name: "sanand plant", City: "sanand"}},
		{"  SANAND PLANT  ", " SANAND ", Key{Name: "sanand plant", City: "sanand"}},
		{"", "", Key{}},
	}

	for _, tt := range tests {
		got := FacilityKey(tt.name, tt.city)
		if got != tt.want {
			t.Errorf("FacilityKey(%q, %q) = %v, want %v", tt.name, tt.city, got, tt.want)
		}
	}

	if !FacilityKey("", "  ").Empty() {
		t.Error("expected blank key to be empty")
	}
	if FacilityKey("x", "").Empty() {
		t.Error("expected named key to be non-empty")
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusOperational, StatusUnderConstruction, StatusPlanned} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if Status("demolished").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}
