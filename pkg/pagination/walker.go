package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/market-radar/pkg/logging"
	"github.com/Sternrassler/market-radar/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// DefaultMaxDepth is the deepest item offset the HH search serves.
const DefaultMaxDepth = 2000

// ErrStopPaging can be returned by a PageFunc to end the walk successfully
// after the current page.
var ErrStopPaging = errors.New("pagination: stop paging")

var hhPagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "hh_pages_fetched_total",
	Help: "Total number of search result pages consumed",
})

// Config holds walker configuration.
type Config struct {
	// PageSize is the per_page value passed to every PageFunc call.
	PageSize int

	// MaxDepth bounds page*PageSize; 0 disables the bound.
	MaxDepth int

	// Delay is the pause between two consecutive pages.
	Delay time.Duration
}

// DefaultConfig returns the configuration matching the public HH API.
func DefaultConfig() Config {
	return Config{
		PageSize: 100,
		MaxDepth: DefaultMaxDepth,
		Delay:    ratelimit.DefaultPageDelay,
	}
}

// PageInfo describes a consumed page.
type PageInfo struct {
	// Items is the number of items the page contained.
	Items int

	// TotalPages as reported by the API.
	TotalPages int
}

// PageFunc fetches and processes one 0-indexed page.
type PageFunc func(ctx context.Context, page, perPage int) (PageInfo, error)

// Stats summarises a finished walk.
type Stats struct {
	Pages    int
	Items    int
	Duration time.Duration
}

// Walker drives a PageFunc over consecutive pages.
type Walker struct {
	config Config
	pacer  *ratelimit.Pacer
	logger zerolog.Logger
}

// NewWalker creates a walker, filling zero values with defaults.
func NewWalker(config Config) *Walker {
	if config.PageSize <= 0 {
		config.PageSize = DefaultConfig().PageSize
	}
	if config.MaxDepth < 0 {
		config.MaxDepth = 0
	}

	logger := logging.NewLogger("pagination")
	return &Walker{
		config: config,
		pacer:  ratelimit.NewPacer(config.Delay, logger),
		logger: logger,
	}
}

// Walk calls fn for page 0, 1, 2, ... until one of the stop conditions holds.
// The first error from fn (other than ErrStopPaging) aborts the walk.
func (w *Walker) Walk(ctx context.Context, fn PageFunc) (Stats, error) {
	start := time.Now()
	var stats Stats
	perPage := w.config.PageSize

	for page := 0; ; page++ {
		if w.config.MaxDepth > 0 && page*perPage >= w.config.MaxDepth {
			w.logger.Warn().
				Int("page", page).
				Int("per_page", perPage).
				Int("max_depth", w.config.MaxDepth).
				Msg("Search depth limit reached")
			break
		}

		info, err := fn(ctx, page, perPage)
		stop := errors.Is(err, ErrStopPaging)
		if err != nil && !stop {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("page %d: %w", page, err)
		}

		stats.Pages++
		stats.Items += info.Items
		hhPagesFetchedTotal.Inc()

		w.logger.Debug().
			Int("page", page).
			Int("pages", info.TotalPages).
			Int("items", info.Items).
			Msg("Page consumed")

		if stop {
			break
		}
		if info.Items == 0 {
			w.logger.Info().Int("page", page).Msg("No more results available")
			break
		}
		if page+1 >= info.TotalPages {
			break
		}

		if err := w.pacer.Wait(ctx); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}
	}

	stats.Duration = time.Since(start)
	w.logger.Debug().
		Int("pages", stats.Pages).
		Int("items", stats.Items).
		Dur("duration", stats.Duration).
		Msg("Walk complete")

	return stats, nil
}
