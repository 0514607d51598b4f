package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/runeset/elotrace/internal/domain/alias"
	"github.com/runeset/elotrace/internal/domain/model"
	"github.com/runeset/elotrace/pkg/logger"
	"github.com/runeset/elotrace/pkg/metrics"
)

// Fetcher is what the rest of the service sees of this package: one
// call that resolves an entity against whichever upstream serves its
// source kind.
type Fetcher interface {
	Fetch(ctx context.Context, entity string, kind model.SourceKind, years model.YearRange) (model.RawSeries, error)
}

// Registry dispatches fetches to the concrete adapters. National
// fetches are an ordered strategy list: the pre-built fast path first,
// the year-by-year crawl when it yields nothing.
type Registry struct {
	club     *clubAdapter
	snapshot *snapshotAdapter
	fastpath *fastPathAdapter
	log      logger.Logger
}

// NewRegistry wires the adapters around one shared guarded client.
func NewRegistry(matcher alias.Matcher, opts ...Option) *Registry {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	client := newGuardedClient(cfg.politenessDelay, cfg.breakerFailures, cfg.breakerCooldown)
	return &Registry{
		club:     newClubAdapter(cfg.clubBaseURL, cfg.clubTimeout, client),
		snapshot: newSnapshotAdapter(cfg.snapshotBaseURL, cfg.snapshotTimeout, client, matcher),
		fastpath: newFastPathAdapter(cfg.fastPathTemplates, cfg.fastPathTimeout, client),
		log:      logger.Get().Named("sources"),
	}
}

// Fetch resolves one entity. The returned series is fresh on every
// call; memoization belongs to the caller.
func (r *Registry) Fetch(ctx context.Context, entity string, kind model.SourceKind, years model.YearRange) (model.RawSeries, error) {
	start := time.Now()
	series, err := r.dispatch(ctx, entity, kind, years)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	} else if series.Empty() {
		outcome = "empty"
	}
	metrics.RecordFetch(string(kind), outcome)
	metrics.RecordFetchDuration(string(kind), float64(time.Since(start).Milliseconds()))

	r.log.Info(ctx, "entity fetch finished",
		logger.String("entity", entity),
		logger.String("source", string(kind)),
		logger.String("outcome", outcome),
		logger.Int("rows", series.Rows()),
		logger.Duration("elapsed", time.Since(start)))
	return series, err
}

func (r *Registry) dispatch(ctx context.Context, entity string, kind model.SourceKind, years model.YearRange) (model.RawSeries, error) {
	switch kind {
	case model.SourceClub:
		return r.club.Fetch(ctx, entity)
	case model.SourceNational:
		if series, ok, err := r.fastpath.Fetch(ctx, entity); err == nil && ok {
			return series, nil
		} else if err != nil {
			// Fast-path context errors abort; anything else already fell
			// through to the next candidate inside the adapter.
			return model.RawSeries{}, &TransportError{Entity: entity, Source: kind, Err: err}
		}
		return r.snapshot.Fetch(ctx, entity, years)
	default:
		return model.RawSeries{}, fmt.Errorf("%w: %q", ErrUnknownSource, kind)
	}
}
