// Package vacancy fetches HH vacancies page by page and turns them into
// plain-text records ready for export.
package vacancy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/market-radar/pkg/client"
	"github.com/Sternrassler/market-radar/pkg/logging"
	"github.com/Sternrassler/market-radar/pkg/pagination"
	"github.com/Sternrassler/market-radar/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Defaults for a Request built from the command line.
const (
	DefaultQuery  = "python backend"
	DefaultLimit  = 30
	DefaultAreaID = 113 // Russia

	// LargeLimit is the point above which a fetch is expected to take long.
	LargeLimit = 1000
)

var (
	hhVacanciesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hh_vacancies_fetched_total",
		Help: "Total number of vacancy records built",
	})

	hhVacanciesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hh_vacancies_skipped_total",
		Help: "Total number of listed vacancies skipped by reason",
	}, []string{"reason"})
)

// Request is one fetch invocation.
type Request struct {
	Query  string
	Limit  int
	AreaID int
}

// Validate checks the request bounds.
func (r Request) Validate() error {
	if r.Limit < 1 {
		return fmt.Errorf("limit must be at least 1 (got %d)", r.Limit)
	}
	if r.AreaID < 0 {
		return fmt.Errorf("area id must not be negative (got %d)", r.AreaID)
	}
	return nil
}

// API is the subset of the HH client the fetcher needs.
type API interface {
	SearchVacancies(ctx context.Context, params client.SearchParams) (*client.SearchPage, error)
	GetVacancy(ctx context.Context, id string) (*client.Vacancy, error)
}

// Config holds fetcher configuration.
type Config struct {
	// PageDelay is the pause between two successful page fetches.
	PageDelay time.Duration

	// MaxDepth bounds how deep into the search results the fetcher pages.
	MaxDepth int

	// SearchField restricts query matching (HH search_field).
	SearchField string
}

// DefaultConfig returns the fetcher defaults.
func DefaultConfig() Config {
	return Config{
		PageDelay:   ratelimit.DefaultPageDelay,
		MaxDepth:    pagination.DefaultMaxDepth,
		SearchField: "name",
	}
}

// Fetcher collects vacancy records.
type Fetcher struct {
	api    API
	config Config
	logger zerolog.Logger
}

// NewFetcher creates a fetcher that talks to api.
func NewFetcher(api API, config Config) *Fetcher {
	return &Fetcher{
		api:    api,
		config: config,
		logger: logging.NewLogger("fetcher"),
	}
}

// Fetch pages through the search results until req.Limit records are
// collected or the API has no more. Every listed vacancy is loaded in full
// to obtain its description and key skills. Any error other than a vacancy
// disappearing between listing and detail aborts the fetch; no partial
// result is returned.
func (f *Fetcher) Fetch(ctx context.Context, req Request) ([]Record, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	perPage := min(req.Limit, client.MaxPerPage)
	walker := pagination.NewWalker(pagination.Config{
		PageSize: perPage,
		MaxDepth: f.config.MaxDepth,
		Delay:    f.config.PageDelay,
	})

	f.logger.Info().
		Str("query", req.Query).
		Int("area", req.AreaID).
		Int("limit", req.Limit).
		Msg("Starting vacancy fetch")

	records := make([]Record, 0, req.Limit)
	seen := make(map[string]struct{}, req.Limit)

	stats, err := walker.Walk(ctx, func(ctx context.Context, page, perPage int) (pagination.PageInfo, error) {
		resp, err := f.api.SearchVacancies(ctx, client.SearchParams{
			Text:        req.Query,
			Area:        req.AreaID,
			SearchField: f.config.SearchField,
			Page:        page,
			PerPage:     perPage,
		})
		if err != nil {
			return pagination.PageInfo{}, fmt.Errorf("search vacancies: %w", err)
		}
		info := pagination.PageInfo{Items: len(resp.Items), TotalPages: resp.Pages}

		for _, item := range resp.Items {
			if len(records) >= req.Limit {
				break
			}

			id := strings.TrimSpace(item.ID)
			if id == "" {
				hhVacanciesSkippedTotal.WithLabelValues("missing_id").Inc()
				f.logger.Warn().Int("page", page).Str("title", item.Name).Msg("Skipping vacancy without id")
				continue
			}
			if _, dup := seen[id]; dup {
				hhVacanciesSkippedTotal.WithLabelValues("duplicate").Inc()
				f.logger.Debug().Str("vacancy_id", id).Msg("Skipping vacancy already fetched")
				continue
			}

			detail, err := f.api.GetVacancy(ctx, id)
			if err != nil {
				if client.IsNotFound(err) {
					hhVacanciesSkippedTotal.WithLabelValues("not_found").Inc()
					f.logger.Warn().Str("vacancy_id", id).Msg("Skipping vacancy removed before detail fetch")
					continue
				}
				return info, fmt.Errorf("get vacancy %s: %w", id, err)
			}

			record, err := NewRecord(detail)
			if err != nil {
				return info, fmt.Errorf("vacancy %s: %w", id, err)
			}
			seen[id] = struct{}{}
			records = append(records, record)
			hhVacanciesFetchedTotal.Inc()

			f.logger.Info().
				Str("vacancy_id", id).
				Msgf("Fetched %d/%d vacancies", len(records), req.Limit)
		}

		if len(records) >= req.Limit {
			return info, pagination.ErrStopPaging
		}
		return info, nil
	})
	if err != nil {
		return nil, err
	}

	f.logger.Info().
		Int("vacancies", len(records)).
		Int("pages", stats.Pages).
		Dur("duration", stats.Duration).
		Msg("Vacancy fetch complete")

	return records, nil
}
