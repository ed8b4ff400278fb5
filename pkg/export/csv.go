// Package export writes vacancy records to CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Sternrassler/market-radar/pkg/logging"
	"github.com/Sternrassler/market-radar/pkg/vacancy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SkillSeparator joins key skills inside the key_skills column.
const SkillSeparator = "; "

// Header is the first CSV row.
var Header = []string{"id", "title", "description", "key_skills"}

var hhExportRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "hh_export_rows_total",
	Help: "Total number of CSV data rows written",
})

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// FileWriteError is returned when the CSV file cannot be created or written.
type FileWriteError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FileWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FileWriteError) Unwrap() error {
	return e.Err
}

// JoinSkills renders key skills as one CSV field.
func JoinSkills(skills []string) string {
	return strings.Join(skills, SkillSeparator)
}

// SplitSkills reverses JoinSkills. An empty field yields an empty, non-nil slice.
func SplitSkills(field string) []string {
	if field == "" {
		return []string{}
	}
	return strings.Split(field, SkillSeparator)
}

// Slugify lowercases the query and replaces every run of characters outside
// [a-z0-9] with a single hyphen. An empty result becomes "all".
func Slugify(query string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(query), "-"), "-")
	if slug == "" {
		return "all"
	}
	return slug
}

// FileName returns vacancies_<yyyy-mm-dd>_<slug>.csv for the given day and query.
func FileName(day time.Time, query string) string {
	return fmt.Sprintf("vacancies_%s_%s.csv", day.Format(time.DateOnly), Slugify(query))
}

// WriteCSV writes the header and one row per record to w.
func WriteCSV(w io.Writer, records []vacancy.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.ID, r.Title, r.Description, JoinSkills(r.KeySkills)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export writes records to path. The data goes to a temporary file in the
// same directory that is renamed over path only after a complete write, so a
// failure never leaves a truncated CSV behind.
func Export(records []vacancy.Record, path string) error {
	logger := logging.NewLogger("exporter")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &FileWriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".vacancies-*.csv.tmp")
	if err != nil {
		return &FileWriteError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		logger.Error().Err(err).Str("path", path).Msg("CSV export failed")
		return &FileWriteError{Path: path, Err: err}
	}

	if err := WriteCSV(tmp, records); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &FileWriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &FileWriteError{Path: path, Err: err}
	}

	hhExportRowsTotal.Add(float64(len(records)))
	logger.Info().
		Int("rows", len(records)).
		Str("path", path).
		Msg("Saved vacancies to CSV")

	return nil
}
