package model

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeSuggestions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suggestions.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestLoadSuggestions(t *testing.T) {
	path := writeSuggestions(t, `
moment:
  - dayjs
  - luxon
lodash:
  - lodash-es
`)

	m, err := LoadSuggestions(path)
	if err != nil {
		t.Fatalf("LoadSuggestions error: %v", err)
	}
	if !reflect.DeepEqual(m["moment"], []string{"dayjs", "luxon"}) {
		t.Errorf("curator order not preserved: %v", m["moment"])
	}
}

func TestLoadSuggestionsStructuralFailure(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not a mapping", "- moment\n- lodash\n"},
		{"scalar alternatives", "moment: dayjs\n"},
		{"empty file", ""},
		{"entry without alternatives", "moment: []\n"},
		{"empty alternative name", "moment:\n  - \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSuggestions(t, tt.content)
			if _, err := LoadSuggestions(path); err == nil {
				t.Error("expected structural validation to fail")
			}
		})
	}
}

func TestLoadSuggestionsMissingFile(t *testing.T) {
	if _, err := LoadSuggestions(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestScrapeSet(t *testing.T) {
	m := SuggestionMap{
		"moment": {"dayjs", "luxon"},
		"lodash": {"lodash-es", "dayjs"}, // dayjs appears twice
	}

	got := m.ScrapeSet()
	want := []string{"dayjs", "lodash", "lodash-es", "luxon", "moment"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ScrapeSet() = %v, want %v", got, want)
	}
}

func TestIsOriginal(t *testing.T) {
	m := SuggestionMap{"moment": {"dayjs"}}
	if !m.IsOriginal("moment") {
		t.Error("key not reported as original")
	}
	if m.IsOriginal("dayjs") {
		t.Error("alternative reported as original")
	}
}
