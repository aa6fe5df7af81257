package searchlog

import (
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-assistant/internal/api"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// GetRecentSearches lists the latest nearby lookups.
func (h *Handler) GetRecentSearches(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SearchLogHandler").Start(r.Context(), "GetRecentSearches", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/admin/searches"),
	))
	defer span.End()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	events, err := h.service.Recent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load recent searches", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load recent searches")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to load recent searches")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, events)
}

// GetSearchSummary returns lookup counts per category.
func (h *Handler) GetSearchSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SearchLogHandler").Start(r.Context(), "GetSearchSummary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/admin/searches/summary"),
	))
	defer span.End()

	counts, err := h.service.Summary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load search summary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load search summary")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to load search summary")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, counts)
}
