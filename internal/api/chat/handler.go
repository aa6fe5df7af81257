package chat

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-assistant/internal/api"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/intent"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

type Handler struct {
	store         *Store
	resolver      NearbyResolver
	defaultRadius float64
	logger        *slog.Logger
}

func NewHandler(store *Store, resolver NearbyResolver, defaultRadius float64, logger *slog.Logger) *Handler {
	return &Handler{
		store:         store,
		resolver:      resolver,
		defaultRadius: defaultRadius,
		logger:        logger,
	}
}

func startSpan(r *http.Request, name, route string) (*http.Request, trace.Span) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return r.WithContext(ctx), span
}

func validLocation(loc types.Location) bool {
	return loc.Lat >= -90 && loc.Lat <= 90 && loc.Lon >= -180 && loc.Lon <= 180
}

func sessionErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, types.ErrSessionBusy) {
		api.ErrorResponse(w, r, http.StatusConflict, "session is busy")
		return
	}
	api.ErrorResponse(w, r, http.StatusNotFound, "session not found")
}

// CreateSession starts a conversation.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "CreateSession", "/chat/sessions")
	defer span.End()

	id, expiresAt := h.store.Create()
	span.SetAttributes(attribute.String("session.id", id))
	h.logger.InfoContext(r.Context(), "Chat session created", slog.String("session_id", id))
	api.WriteJSONResponse(w, r, http.StatusCreated, types.CreateSessionResponse{
		SessionID: id,
		ExpiresAt: expiresAt,
	})
}

// SendMessage handles one user utterance.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "SendMessage", "/chat/sessions/{sessionID}/messages")
	defer span.End()
	ctx := r.Context()

	sessionID := chi.URLParam(r, "sessionID")
	l := h.logger.With(slog.String("handler", "SendMessage"), slog.String("session_id", sessionID))

	var req types.ChatMessageRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "message is required")
		return
	}
	if req.Location != nil && !validLocation(*req.Location) {
		api.ErrorResponse(w, r, http.StatusBadRequest, "location is out of range")
		return
	}

	var resp types.ChatMessageResponse
	err := h.store.With(ctx, sessionID, func(s *Session) {
		location := req.Location
		if location == nil && req.UseCurrentLocation {
			location = s.GetCurrentLocation(ctx)
		}
		resp = types.ChatMessageResponse{
			SessionID:        sessionID,
			Reply:            s.SendMessage(ctx, req.Message, req.Language, location),
			State:            s.State(),
			TranscriptLength: len(s.Transcript()),
		}
	})
	if err != nil {
		l.InfoContext(ctx, "Session unavailable", slog.Any("error", err))
		sessionErrorResponse(w, r, err)
		return
	}

	span.SetStatus(codes.Ok, "Message handled")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// ResetChat clears the conversation history.
func (h *Handler) ResetChat(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "ResetChat", "/chat/sessions/{sessionID}/reset")
	defer span.End()

	if err := h.store.With(r.Context(), chi.URLParam(r, "sessionID"), func(s *Session) { s.ResetChat() }); err != nil {
		sessionErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// GetCurrentLocation reports the caller's position as seen by the session.
func (h *Handler) GetCurrentLocation(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "GetCurrentLocation", "/chat/sessions/{sessionID}/location")
	defer span.End()

	var loc *types.Location
	err := h.store.With(r.Context(), chi.URLParam(r, "sessionID"), func(s *Session) {
		loc = s.GetCurrentLocation(r.Context())
	})
	if err != nil {
		sessionErrorResponse(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.LocationResponse{Location: loc})
}

// DeleteSession ends a conversation.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "DeleteSession", "/chat/sessions/{sessionID}")
	defer span.End()

	if !h.store.Delete(chi.URLParam(r, "sessionID")) {
		api.ErrorResponse(w, r, http.StatusNotFound, "session not found")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// GetNearby classifies q and lists places around lat/lon.
func (h *Handler) GetNearby(w http.ResponseWriter, r *http.Request) {
	r, span := startSpan(r, "GetNearby", "/nearby")
	defer span.End()

	query := r.URL.Query()
	lat, latErr := strconv.ParseFloat(query.Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(query.Get("lon"), 64)
	origin := types.Location{Lat: lat, Lon: lon}
	if latErr != nil || lonErr != nil || !validLocation(origin) {
		api.ErrorResponse(w, r, http.StatusBadRequest, "lat and lon must be valid coordinates")
		return
	}

	radius := h.defaultRadius
	if raw := query.Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "radius must be a positive number of meters")
			return
		}
		radius = parsed
	}

	q := intent.Classify(query.Get("q"))
	places := h.resolver.ResolveNearby(r.Context(), origin, radius, q)
	span.SetAttributes(
		attribute.String("intent.category", string(q.Category)),
		attribute.Int("places.count", len(places)),
	)
	api.WriteJSONResponse(w, r, http.StatusOK, types.NearbyResponse{Intent: q, Places: places})
}
