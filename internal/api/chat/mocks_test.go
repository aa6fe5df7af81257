package chat

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req types.GenerationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockNearbyResolver struct {
	mock.Mock
}

func (m *MockNearbyResolver) ResolveNearby(ctx context.Context, origin types.Location, radiusMeters float64, q types.QueryIntent) []types.PlaceCandidate {
	args := m.Called(ctx, origin, radiusMeters, q)
	return args.Get(0).([]types.PlaceCandidate)
}

type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) Locate(ctx context.Context) (types.Location, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.Location), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testPersona = "You are a tourism assistant."

var testSettings = Settings{
	Persona:       testPersona,
	MaxTranscript: 20,
	MaxTokens:     1000,
	Temperature:   0.7,
	SearchRadius:  5000,
}

func newTestSession(gen Generator, resolver NearbyResolver, locator Locator) *Session {
	return NewSession("test-session", gen, resolver, locator, testLanguages(), testSettings, discardLogger())
}
