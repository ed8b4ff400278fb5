package vacancy

import (
	"errors"
	"strings"

	"github.com/Sternrassler/market-radar/pkg/client"
	"github.com/Sternrassler/market-radar/pkg/htmltext"
)

// ErrEmptyID is returned by NewRecord for vacancies without an id.
var ErrEmptyID = errors.New("vacancy id is empty")

// Record is a single cleaned vacancy. Treat it as a value: nothing in this
// module mutates a Record after NewRecord returns it.
type Record struct {
	ID    string
	Title string

	// Description is plain text.
	Description string

	// KeySkills keeps API order and is never nil.
	KeySkills []string
}

// NewRecord builds a Record from a full API vacancy, cleaning the HTML
// description.
func NewRecord(v *client.Vacancy) (Record, error) {
	id := strings.TrimSpace(v.ID)
	if id == "" {
		return Record{}, ErrEmptyID
	}
	return Record{
		ID:          id,
		Title:       strings.TrimSpace(v.Name),
		Description: htmltext.Clean(v.Description),
		KeySkills:   v.SkillNames(),
	}, nil
}
