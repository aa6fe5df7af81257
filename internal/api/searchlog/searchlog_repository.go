package searchlog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	Insert(ctx context.Context, event types.SearchEvent) error
	Recent(ctx context.Context, limit int) ([]types.SearchEvent, error)
	CountByCategory(ctx context.Context) ([]types.CategorySearchCount, error)
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type RepositoryImpl struct {
	pgpool DB
	logger *slog.Logger
}

func NewRepository(pgpool DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		pgpool: pgpool,
		logger: logger,
	}
}

func (r *RepositoryImpl) Insert(ctx context.Context, event types.SearchEvent) error {
	ctx, span := otel.Tracer("SearchLogRepository").Start(ctx, "Insert", trace.WithAttributes(
		attribute.String("category", string(event.Category)),
	))
	defer span.End()

	query := `
		INSERT INTO search_events (id, lat, lon, radius_meters, category, dietary_filter, result_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pgpool.Exec(ctx, query,
		event.ID, event.Lat, event.Lon, event.RadiusMeters,
		string(event.Category), string(event.DietaryFilter), event.ResultCount, event.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Insert failed")
		return fmt.Errorf("failed to insert search event: %w", err)
	}
	span.SetStatus(codes.Ok, "Search event stored")
	return nil
}

func (r *RepositoryImpl) Recent(ctx context.Context, limit int) ([]types.SearchEvent, error) {
	ctx, span := otel.Tracer("SearchLogRepository").Start(ctx, "Recent", trace.WithAttributes(
		attribute.Int("limit", limit),
	))
	defer span.End()

	query := `
		SELECT id, lat, lon, radius_meters, category, dietary_filter, result_count, created_at
		FROM search_events
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pgpool.Query(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to query search events: %w", err)
	}
	defer rows.Close()

	events := make([]types.SearchEvent, 0, limit)
	for rows.Next() {
		var (
			e                 types.SearchEvent
			category, dietary string
		)
		if err := rows.Scan(&e.ID, &e.Lat, &e.Lon, &e.RadiusMeters, &category, &dietary, &e.ResultCount, &e.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan search event: %w", err)
		}
		e.Category = types.PlaceCategory(category)
		e.DietaryFilter = types.DietaryFilter(dietary)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating search events: %w", err)
	}

	span.SetAttributes(attribute.Int("events.count", len(events)))
	return events, nil
}

func (r *RepositoryImpl) CountByCategory(ctx context.Context) ([]types.CategorySearchCount, error) {
	ctx, span := otel.Tracer("SearchLogRepository").Start(ctx, "CountByCategory")
	defer span.End()

	query := `
		SELECT category, COUNT(*)
		FROM search_events
		GROUP BY category
		ORDER BY COUNT(*) DESC, category`

	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to count search events: %w", err)
	}
	defer rows.Close()

	var counts []types.CategorySearchCount
	for rows.Next() {
		var (
			category string
			total    int
		)
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts = append(counts, types.CategorySearchCount{Category: types.PlaceCategory(category), Total: total})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category counts: %w", err)
	}
	return counts, nil
}
