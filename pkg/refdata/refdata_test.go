package refdata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalDivision(t *testing.T) {
	tables := Default()

	tests := []struct {
		in   string
		want string
	}{
		{"MSWIL", "Wiring Systems"},
		{"mswil", "Wiring Systems"},
		{"SMR", "Vision Systems"},
		{"SEATING", "Seating Systems"},
		// Names absent from the table pass through unchanged.
		{"Aerospace", "Aerospace"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := tables.CanonicalDivision(tt.in); got != tt.want {
			t.Errorf("CanonicalDivision(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStateOf(t *testing.T) {
	tables := Default()

	if got := tables.StateOf("Sanand"); got != "Gujarat" {
		t.Errorf("StateOf(Sanand) = %q", got)
	}
	if got := tables.StateOf("Atlantis"); got != "" {
		t.Errorf("StateOf(Atlantis) = %q, want empty", got)
	}
}

func TestExtractCity(t *testing.T) {
	tables := Default()

	tests := []struct {
		text string
		want string
	}{
		{"New wiring plant announced in Sanand today", "Sanand"},
		{"CHAKAN facility expansion", "Chakan"},
		{"No known location here", ""},
	}

	for _, tt := range tests {
		if got := tables.ExtractCity(tt.text); got != tt.want {
			t.Errorf("ExtractCity(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestInferDivision(t *testing.T) {
	tables := Default()

	tests := []struct {
		text string
		want string
	}{
		{"MSWIL Sanand plant", "Wiring Systems"},
		{"new harness line", "Wiring Systems"},
		{"mirror manufacturing unit", "Vision Systems"},
		{"unrelated mention", DefaultDivision},
	}

	for _, tt := range tests {
		if got := tables.InferDivision(tt.text); got != tt.want {
			t.Errorf("InferDivision(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestCommonState(t *testing.T) {
	tables := Default()

	if got := tables.CommonState("sanand gujarat", "ahmedabad gujarat"); got != "gujarat" {
		t.Errorf("CommonState() = %q, want gujarat", got)
	}
	if got := tables.CommonState("sanand gujarat", "chakan maharashtra"); got != "" {
		t.Errorf("CommonState() = %q, want empty", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	overrides := `
divisions:
  aero: Aerospace
city_states:
  Indore: Madhya Pradesh
name_suffixes:
  - plant
  - works
`
	if err := os.WriteFile(path, []byte(overrides), 0644); err != nil {
		t.Fatal(err)
	}

	tables, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Map sections merge over the built-ins.
	if got := tables.CanonicalDivision("AERO"); got != "Aerospace" {
		t.Errorf("override division = %q", got)
	}
	if got := tables.CanonicalDivision("MSWIL"); got != "Wiring Systems" {
		t.Errorf("built-in division lost: %q", got)
	}
	if got := tables.StateOf("Indore"); got != "Madhya Pradesh" {
		t.Errorf("override city = %q", got)
	}

	// List sections replace wholesale.
	if len(tables.NameSuffixes) != 2 {
		t.Errorf("expected 2 suffixes, got %v", tables.NameSuffixes)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	tables, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := tables.CanonicalDivision("SMP"); got != "Polymers" {
		t.Errorf("default tables missing: %q", got)
	}
}
