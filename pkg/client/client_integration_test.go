//go:build integration

package client

import (
	"context"
	"os"
	"testing"
	"time"
)

// newLiveClient talks to the real HH API. HH_API_BASE_URL and HH_USER_AGENT
// override the defaults.
func newLiveClient(t *testing.T) *Client {
	t.Helper()

	cfg := DefaultConfig(DefaultUserAgent)
	if ua := os.Getenv("HH_USER_AGENT"); ua != "" {
		cfg.UserAgent = ua
	}
	if base := os.Getenv("HH_API_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestIntegration_SearchAndDetail(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c := newLiveClient(t)

	page, err := c.SearchVacancies(ctx, SearchParams{
		Text:        "data scientist",
		Area:        1,
		SearchField: "name",
		PerPage:     2,
	})
	if err != nil {
		t.Fatalf("SearchVacancies() error = %v", err)
	}
	if page.PerPage != 2 {
		t.Errorf("PerPage = %d, want 2", page.PerPage)
	}
	if len(page.Items) > 2 {
		t.Errorf("got %d items, want at most 2", len(page.Items))
	}
	if len(page.Items) == 0 {
		t.Skip("No vacancies listed for the query")
	}

	v, err := c.GetVacancy(ctx, page.Items[0].ID)
	if err != nil {
		if IsNotFound(err) {
			t.Skip("Vacancy removed between search and detail")
		}
		t.Fatalf("GetVacancy() error = %v", err)
	}
	if v.ID != page.Items[0].ID {
		t.Errorf("ID = %q, want %q", v.ID, page.Items[0].ID)
	}
	if v.SkillNames() == nil {
		t.Error("SkillNames() returned nil")
	}

	t.Logf("Fetched vacancy %s: %s (%d skills)", v.ID, v.Name, len(v.KeySkills))
}

func TestIntegration_UnknownVacancy(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := newLiveClient(t).GetVacancy(ctx, "0")
	if !IsNotFound(err) {
		t.Errorf("GetVacancy(0) error = %v, want not found", err)
	}
}
