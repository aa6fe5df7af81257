package nearby

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/go-travel-assistant/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

const (
	defaultRadiusMeters  = 5000
	defaultMaxResults    = 10
	defaultLookupTimeout = 60 * time.Second
)

// SearchRecorder receives one event per lookup.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, event types.SearchEvent) error
}

type Options struct {
	DefaultRadius float64
	MaxResults    int
	CacheTTL      time.Duration
	// LookupTimeout bounds a shared upstream lookup, which outlives any
	// single caller's context.
	LookupTimeout time.Duration
}

// Resolver turns an origin and an intent into a ranked list of nearby places.
// It is safe for concurrent use.
type Resolver struct {
	client        GeoQuerier
	recorder      SearchRecorder
	cache         *cache.Cache
	group         singleflight.Group
	defaultRadius float64
	maxResults    int
	lookupTimeout time.Duration
	logger        *slog.Logger
}

func NewResolver(client GeoQuerier, recorder SearchRecorder, opts Options, logger *slog.Logger) *Resolver {
	r := &Resolver{
		client:        client,
		recorder:      recorder,
		defaultRadius: opts.DefaultRadius,
		maxResults:    opts.MaxResults,
		lookupTimeout: opts.LookupTimeout,
		logger:        logger,
	}
	if r.defaultRadius <= 0 {
		r.defaultRadius = defaultRadiusMeters
	}
	if r.maxResults <= 0 {
		r.maxResults = defaultMaxResults
	}
	if r.lookupTimeout <= 0 {
		r.lookupTimeout = defaultLookupTimeout
	}
	if opts.CacheTTL > 0 {
		r.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return r
}

func generateNearbyCacheKey(origin types.Location, radius float64, q types.QueryIntent) string {
	return fmt.Sprintf("nearby:%.4f:%.4f:%.0f:%s:%s", origin.Lat, origin.Lon, radius, q.Category, q.DietaryFilter)
}

// ResolveNearby never fails: upstream and parsing errors are logged and yield an
// empty list.
func (r *Resolver) ResolveNearby(ctx context.Context, origin types.Location, radiusMeters float64, q types.QueryIntent) []types.PlaceCandidate {
	if radiusMeters <= 0 {
		radiusMeters = r.defaultRadius
	}
	ctx, span := otel.Tracer("NearbyResolver").Start(ctx, "ResolveNearby", trace.WithAttributes(
		attribute.Float64("origin.lat", origin.Lat),
		attribute.Float64("origin.lon", origin.Lon),
		attribute.Float64("radius.meters", radiusMeters),
		attribute.String("category", string(q.Category)),
		attribute.String("dietary_filter", string(q.DietaryFilter)),
	))
	defer span.End()

	l := r.logger.With(slog.String("category", string(q.Category)))
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("category", string(q.Category)))
	m.NearbyLookupsTotal.Add(ctx, 1, attrs)

	cacheKey := generateNearbyCacheKey(origin, radiusMeters, q)
	span.SetAttributes(attribute.String("cache.key", cacheKey))

	// Raw elements are cached and shared; distances are always measured from
	// the caller's own origin.
	if r.cache != nil {
		if cached, found := r.cache.Get(cacheKey); found {
			places := ParseCandidates(origin, cached.([]Element), r.maxResults)
			l.DebugContext(ctx, "Nearby places served from cache", slog.Int("count", len(places)))
			span.SetAttributes(attribute.Bool("cache.hit", true), attribute.Int("places.count", len(places)))
			r.record(ctx, origin, radiusMeters, q, len(places))
			return places
		}
	}

	start := time.Now()
	query := BuildQuery(origin, radiusMeters, q)
	lookupCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(cacheKey, func() (interface{}, error) {
		qctx, cancel := context.WithTimeout(lookupCtx, r.lookupTimeout)
		defer cancel()
		elements, err := r.client.Query(qctx, query)
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			r.cache.Set(cacheKey, elements, cache.DefaultExpiration)
		}
		return elements, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res = singleflight.Result{Err: ctx.Err()}
	}
	m.NearbyLookupDuration.Record(ctx, time.Since(start).Seconds(), attrs)

	if err := res.Err; err != nil {
		l.WarnContext(ctx, "Nearby lookup failed, returning no places", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Nearby lookup failed")
		m.UpstreamRequestErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("service", "geodata")))
		r.record(ctx, origin, radiusMeters, q, 0)
		return []types.PlaceCandidate{}
	}

	places := ParseCandidates(origin, res.Val.([]Element), r.maxResults)
	m.NearbyResultsCount.Record(ctx, int64(len(places)), attrs)
	span.SetAttributes(attribute.Bool("singleflight.shared", res.Shared), attribute.Int("places.count", len(places)))
	span.SetStatus(codes.Ok, "Nearby places resolved")
	l.InfoContext(ctx, "Nearby places resolved", slog.Int("count", len(places)))

	r.record(ctx, origin, radiusMeters, q, len(places))
	return places
}

func (r *Resolver) record(ctx context.Context, origin types.Location, radius float64, q types.QueryIntent, count int) {
	if r.recorder == nil {
		return
	}
	event := types.SearchEvent{
		ID:            uuid.New(),
		Lat:           origin.Lat,
		Lon:           origin.Lon,
		RadiusMeters:  radius,
		Category:      q.Category,
		DietaryFilter: q.DietaryFilter,
		ResultCount:   count,
		CreatedAt:     time.Now().UTC(),
	}
	if err := r.recorder.RecordSearch(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "Failed to record nearby search", slog.Any("error", err))
	}
}
