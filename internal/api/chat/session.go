package chat

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-assistant/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/intent"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// Generator produces the assistant's reply for a conversation turn.
type Generator interface {
	Generate(ctx context.Context, req types.GenerationRequest) (string, error)
}

// NearbyResolver finds places around a point. It never fails; errors surface
// as an empty result.
type NearbyResolver interface {
	ResolveNearby(ctx context.Context, origin types.Location, radiusMeters float64, q types.QueryIntent) []types.PlaceCandidate
}

// Locator resolves the caller's current position.
type Locator interface {
	Locate(ctx context.Context) (types.Location, error)
}

type Settings struct {
	Persona       string
	MaxTranscript int
	MaxTokens     int32
	Temperature   float32
	SearchRadius  float64
}

// Session is one conversation. It holds no lock: callers serialize calls on
// the same instance (see Store.With).
type Session struct {
	id         string
	generator  Generator
	resolver   NearbyResolver
	locator    Locator
	languages  *LanguageTable
	settings   Settings
	transcript *Transcript
	state      types.SessionState
	logger     *slog.Logger
}

func NewSession(id string, generator Generator, resolver NearbyResolver, locator Locator,
	languages *LanguageTable, settings Settings, logger *slog.Logger) *Session {
	return &Session{
		id:         id,
		generator:  generator,
		resolver:   resolver,
		locator:    locator,
		languages:  languages,
		settings:   settings,
		transcript: NewTranscript(settings.Persona, settings.MaxTranscript),
		state:      types.StateIdle,
		logger:     logger.With(slog.String("session_id", id)),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() types.SessionState { return s.state }

// Transcript returns a copy of the conversation history.
func (s *Session) Transcript() []types.Turn { return s.transcript.Turns() }

// SendMessage answers one utterance. Location questions with a known
// position are answered from geodata without touching the transcript. All
// other messages go to the generative model; any failure yields the
// language's fallback and leaves the transcript as it was.
func (s *Session) SendMessage(ctx context.Context, utterance, language string, location *types.Location) string {
	language = s.languages.Normalize(language)
	ctx, span := otel.Tracer("ChatSession").Start(ctx, "SendMessage", trace.WithAttributes(
		attribute.String("session.id", s.id),
		attribute.String("language", language),
	))
	defer span.End()

	m := metrics.Get()
	if location != nil && intent.IsLocationQuery(utterance) {
		m.MessagesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("route", "nearby")))
		return s.answerNearby(ctx, span, utterance, *location)
	}
	m.MessagesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("route", "model")))

	message := utterance
	if instruction := s.languages.Instruction(language); instruction != "" {
		message = instruction + "\n\n" + utterance
	}

	s.state = types.StateAwaitingUpstream
	reply, err := s.generator.Generate(ctx, types.GenerationRequest{
		SystemInstruction: s.settings.Persona,
		History:           s.transcript.Turns()[1:],
		Message:           message,
		MaxOutputTokens:   s.settings.MaxTokens,
		Temperature:       s.settings.Temperature,
	})
	s.state = types.StateReady
	if err != nil {
		s.logger.WarnContext(ctx, "Generative model failed, replying with fallback",
			slog.String("language", language), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		m.FallbacksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("language", language)))
		return s.languages.Fallback(language)
	}

	s.transcript.Append(
		types.Turn{Role: types.RoleUser, Text: message},
		types.Turn{Role: types.RoleAssistant, Text: reply},
	)
	span.SetAttributes(attribute.Int("transcript.length", s.transcript.Len()))
	span.SetStatus(codes.Ok, "Reply generated")
	return reply
}

func (s *Session) answerNearby(ctx context.Context, span trace.Span, utterance string, origin types.Location) string {
	q := intent.Classify(utterance)
	if s.resolver == nil {
		s.logger.DebugContext(ctx, "Nearby search not configured")
		return FormatNearbyReply(q, nil)
	}
	places := s.resolver.ResolveNearby(ctx, origin, s.settings.SearchRadius, q)
	span.SetAttributes(
		attribute.String("intent.category", string(q.Category)),
		attribute.Int("places.count", len(places)),
	)
	s.logger.DebugContext(ctx, "Answered location query",
		slog.String("category", string(q.Category)), slog.Int("places", len(places)))
	return FormatNearbyReply(q, places)
}

// ResetChat discards history, leaving only the persona turn.
func (s *Session) ResetChat() {
	s.transcript.Reset(s.settings.Persona)
	s.state = types.StateIdle
}

// GetCurrentLocation returns the caller's position, or nil when it cannot be
// determined.
func (s *Session) GetCurrentLocation(ctx context.Context) *types.Location {
	if s.locator == nil {
		s.logger.DebugContext(ctx, "Geolocation not supported")
		return nil
	}
	loc, err := s.locator.Locate(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Could not determine current location", slog.Any("error", err))
		return nil
	}
	return &loc
}
