package odata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/npapad/s1rgb/internal/geo"
	"github.com/npapad/s1rgb/internal/scene"
)

// ErrNoProducts is returned when the combined catalog filter matches
// nothing. The run fails; callers may retry with widened parameters.
var ErrNoProducts = errors.New("no products matched AOI and sensing time window")

// Sensing timestamps for the same acquisition drift by a few seconds
// between independently-indexed catalogs.
const sensingTolerance = 5 * time.Second

const defaultTop = 10

// Matcher resolves a scene discovered in one catalog into the single
// authoritative product record of another, reconciling the identifier
// mismatch between the two systems.
type Matcher struct {
	client *Client
	top    int
	logger *slog.Logger
}

// NewMatcher creates a matcher over the given catalog client.
func NewMatcher(client *Client) *Matcher {
	return &Matcher{
		client: client,
		top:    defaultTop,
		logger: slog.Default(),
	}
}

// WithTop overrides how many candidates a query requests.
func (m *Matcher) WithTop(top int) *Matcher {
	if top > 0 {
		m.top = top
	}
	return m
}

// WithLogger sets a custom logger for the matcher.
func (m *Matcher) WithLogger(logger *slog.Logger) *Matcher {
	m.logger = logger
	return m
}

// Resolve returns exactly one product for the discovered scene, or fails.
//
// Candidates are queried with the spatial, temporal, and name predicates
// combined, ordered by publication time descending. The first candidate
// whose name starts with the scene's identifier stem wins; when no name
// matches the stem, the first candidate overall is used. The fallback is a
// deliberate best-effort policy: catalogs may assign different variant
// suffixes to the same physical acquisition, so an exact stem match is
// preferred but not mandatory.
func (m *Matcher) Resolve(ctx context.Context, aoi geo.AOI, ptr scene.Pointer) (Product, error) {
	query := ProductQuery{
		Filter:  GRDHFilter(aoi, ptr.Start, sensingTolerance),
		OrderBy: "PublicationDate desc",
		Select:  []string{"Id", "Name", "ContentDate", "PublicationDate"},
		Top:     m.top,
	}

	candidates, err := m.client.Products(ctx, query)
	if err != nil {
		return Product{}, fmt.Errorf("product query failed: %w", err)
	}
	if len(candidates) == 0 {
		return Product{}, fmt.Errorf("%w: scene %s", ErrNoProducts, ptr.ID)
	}

	prefix := ptr.Prefix()
	for _, candidate := range candidates {
		if strings.HasPrefix(candidate.Name, prefix) {
			m.logger.InfoContext(ctx, "matched product by name prefix",
				slog.String("scene_id", ptr.ID),
				slog.String("product_name", candidate.Name),
				slog.String("product_id", candidate.ID),
			)
			return candidate, nil
		}
	}

	// Best effort: a geometrically and temporally similar product that may
	// still be a different physical acquisition. The selection is surfaced
	// loudly so a downstream mismatch can be traced back here.
	fallback := candidates[0]
	m.logger.WarnContext(ctx, "no candidate name matched scene prefix, falling back to newest publication",
		slog.String("scene_id", ptr.ID),
		slog.String("prefix", prefix),
		slog.String("product_name", fallback.Name),
		slog.Int("candidates", len(candidates)),
	)
	return fallback, nil
}
