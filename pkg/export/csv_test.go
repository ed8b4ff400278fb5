package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/market-radar/pkg/vacancy"
)

func sampleRecords() []vacancy.Record {
	return []vacancy.Record{
		{
			ID:          "93015720",
			Title:       "Python backend developer",
			Description: "Build APIs, services and tools.\n\nRemote, \"flexible\" hours.",
			KeySkills:   []string{"Python", "Django", "PostgreSQL"},
		},
		{
			ID:          "93015721",
			Title:       "Data scientist",
			Description: "Models",
			KeySkills:   []string{},
		},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("CSV does not parse: %v", err)
	}
	return rows
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	records := sampleRecords()

	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	rows := readCSV(t, buf.Bytes())
	if len(rows) != len(records)+1 {
		t.Fatalf("rows = %d, want %d", len(rows), len(records)+1)
	}
	if !reflect.DeepEqual(rows[0], Header) {
		t.Errorf("header = %v, want %v", rows[0], Header)
	}

	for i, r := range records {
		row := rows[i+1]
		if row[0] != r.ID || row[1] != r.Title || row[2] != r.Description {
			t.Errorf("row %d = %q, want record %+v", i+1, row, r)
		}
		if got := SplitSkills(row[3]); !reflect.DeepEqual(got, r.KeySkills) {
			t.Errorf("row %d skills = %q, want %q", i+1, got, r.KeySkills)
		}
	}

	if !strings.HasPrefix(buf.String(), "id,title,description,key_skills\n") {
		t.Errorf("unexpected header line: %q", strings.SplitN(buf.String(), "\n", 2)[0])
	}
	if !strings.Contains(buf.String(), `"Build APIs, services and tools.`) {
		t.Error("field with comma and newline should be quoted")
	}
}

func TestSkillsRoundTrip(t *testing.T) {
	tests := [][]string{
		{},
		{"Go"},
		{"Python", "Django", "REST API"},
		{"C++", "Qt", "Linux"},
	}

	for _, skills := range tests {
		if got := SplitSkills(JoinSkills(skills)); !reflect.DeepEqual(got, skills) {
			t.Errorf("SplitSkills(JoinSkills(%q)) = %q", skills, got)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"python backend", "python-backend"},
		{"Data Scientist", "data-scientist"},
		{"  C++ / Go developer!! ", "c-go-developer"},
		{"python backend OR python developer", "python-backend-or-python-developer"},
		{"аналитик", "all"},
		{"", "all"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := Slugify(tt.query); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	day := time.Date(2026, 3, 7, 23, 59, 0, 0, time.UTC)

	got := FileName(day, "data scientist")
	want := "vacancies_2026-03-07_data-scientist.csv"
	if got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.csv")

	if err := Export(sampleRecords(), path); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if rows := readCSV(t, data); len(rows) != 3 {
		t.Errorf("rows = %d, want 3", len(rows))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, temporary file left behind?", len(entries))
	}
}

func TestExport_FileWriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Export(sampleRecords(), filepath.Join(blocker, "out.csv"))

	var writeErr *FileWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Export() error = %v, want *FileWriteError", err)
	}
	if !strings.HasSuffix(writeErr.Path, "out.csv") {
		t.Errorf("Path = %q", writeErr.Path)
	}
}
