package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

type handlerFixture struct {
	router   chi.Router
	store    *Store
	gen      *MockGenerator
	resolver *MockNearbyResolver
	locator  *MockLocator
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		gen:      new(MockGenerator),
		resolver: new(MockNearbyResolver),
		locator:  new(MockLocator),
	}
	f.store = NewStore(time.Minute, func(id string) *Session {
		return NewSession(id, f.gen, f.resolver, f.locator, testLanguages(), testSettings, discardLogger())
	})
	h := NewHandler(f.store, f.resolver, 5000, discardLogger())

	r := chi.NewRouter()
	r.Post("/chat/sessions", h.CreateSession)
	r.Post("/chat/sessions/{sessionID}/messages", h.SendMessage)
	r.Post("/chat/sessions/{sessionID}/reset", h.ResetChat)
	r.Get("/chat/sessions/{sessionID}/location", h.GetCurrentLocation)
	r.Delete("/chat/sessions/{sessionID}", h.DeleteSession)
	r.Get("/nearby", h.GetNearby)
	f.router = r
	return f
}

func (f *handlerFixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *handlerFixture) createSession(t *testing.T) string {
	rec := f.do(http.MethodPost, "/chat/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp types.CreateSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func TestHandler_SendMessage(t *testing.T) {
	t.Run("model reply", func(t *testing.T) {
		f := newHandlerFixture()
		f.gen.On("Generate", mock.Anything, mock.Anything).Return("Visit the Red Fort.", nil).Once()
		id := f.createSession(t)

		rec := f.do(http.MethodPost, "/chat/sessions/"+id+"/messages", `{"message":"what to see in Delhi?"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp types.ChatMessageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Visit the Red Fort.", resp.Reply)
		assert.Equal(t, types.StateReady, resp.State)
		assert.Equal(t, 3, resp.TranscriptLength)
	})

	t.Run("upstream failure still returns 200 with fallback", func(t *testing.T) {
		f := newHandlerFixture()
		f.gen.On("Generate", mock.Anything, mock.Anything).Return("", types.ErrUpstreamUnavailable).Once()
		id := f.createSession(t)

		rec := f.do(http.MethodPost, "/chat/sessions/"+id+"/messages", `{"message":"hello","language":"hi"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp types.ChatMessageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, hindiFallback, resp.Reply)
		assert.Equal(t, 1, resp.TranscriptLength)
	})

	t.Run("explicit location answers from geodata", func(t *testing.T) {
		f := newHandlerFixture()
		f.resolver.On("ResolveNearby", mock.Anything, delhi, 5000.0, types.QueryIntent{Category: types.CategoryMedical}).
			Return([]types.PlaceCandidate{}).Once()
		id := f.createSession(t)

		rec := f.do(http.MethodPost, "/chat/sessions/"+id+"/messages",
			`{"message":"pharmacy near me","location":{"lat":28.6139,"lon":77.209}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "medical facilities")
		f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("current location is looked up on request", func(t *testing.T) {
		f := newHandlerFixture()
		f.locator.On("Locate", mock.Anything).Return(delhi, nil).Once()
		f.resolver.On("ResolveNearby", mock.Anything, delhi, 5000.0, types.QueryIntent{Category: types.CategoryGeneric}).
			Return([]types.PlaceCandidate{{Name: "India Gate", Category: "attraction", DistanceKm: 1}}).Once()
		id := f.createSession(t)

		rec := f.do(http.MethodPost, "/chat/sessions/"+id+"/messages",
			`{"message":"what is around here","use_current_location":true}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "India Gate")
		f.locator.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		f := newHandlerFixture()
		id := f.createSession(t)

		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/chat/sessions/"+id+"/messages", `{"message":"  "}`).Code)
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/chat/sessions/"+id+"/messages", `{"msg":"hi"}`).Code)
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/chat/sessions/"+id+"/messages",
			`{"message":"hi","location":{"lat":120,"lon":0}}`).Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newHandlerFixture()
		rec := f.do(http.MethodPost, "/chat/sessions/nope/messages", `{"message":"hello"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_SessionLifecycle(t *testing.T) {
	f := newHandlerFixture()
	f.gen.On("Generate", mock.Anything, mock.Anything).Return("reply", nil)
	f.locator.On("Locate", mock.Anything).Return(types.Location{}, types.ErrUpstreamUnavailable).Once()
	id := f.createSession(t)

	f.do(http.MethodPost, "/chat/sessions/"+id+"/messages", `{"message":"one"}`)
	f.do(http.MethodPost, "/chat/sessions/"+id+"/messages", `{"message":"two"}`)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/chat/sessions/"+id+"/reset", "").Code)
	require.NoError(t, f.store.With(context.Background(), id, func(s *Session) {
		assert.Len(t, s.Transcript(), 1)
	}))

	rec := f.do(http.MethodGet, "/chat/sessions/"+id+"/location", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"location":null}`, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/chat/sessions/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/chat/sessions/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/chat/sessions/"+id+"/reset", "").Code)
}

func TestHandler_BusySession(t *testing.T) {
	f := newHandlerFixture()
	id := f.createSession(t)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- f.store.With(context.Background(), id, func(*Session) {
			close(held)
			<-release
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/chat/sessions/"+id+"/reset", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/chat/sessions/"+id+"/reset", "").Code)
}

func TestHandler_GetNearby(t *testing.T) {
	t.Run("classifies query and applies default radius", func(t *testing.T) {
		f := newHandlerFixture()
		f.resolver.On("ResolveNearby", mock.Anything, delhi, 5000.0,
			types.QueryIntent{Category: types.CategoryRestaurant, DietaryFilter: types.DietaryVegetarian}).
			Return([]types.PlaceCandidate{{Name: "Sattvik", Category: "restaurant", DistanceKm: 0.8}}).Once()

		rec := f.do(http.MethodGet, "/nearby?lat=28.6139&lon=77.209&q=veg+restaurant", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp types.NearbyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, types.CategoryRestaurant, resp.Intent.Category)
		require.Len(t, resp.Places, 1)
		assert.Equal(t, "Sattvik", resp.Places[0].Name)
	})

	t.Run("custom radius", func(t *testing.T) {
		f := newHandlerFixture()
		f.resolver.On("ResolveNearby", mock.Anything, delhi, 1500.0, types.QueryIntent{Category: types.CategoryGeneric}).
			Return([]types.PlaceCandidate{}).Once()

		rec := f.do(http.MethodGet, "/nearby?lat=28.6139&lon=77.209&radius=1500", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"intent":{"category":"generic"},"places":[]}`, rec.Body.String())
	})

	t.Run("bad input", func(t *testing.T) {
		f := newHandlerFixture()
		for _, target := range []string{
			"/nearby?lon=77.2",
			"/nearby?lat=abc&lon=77.2",
			"/nearby?lat=95&lon=77.2",
			"/nearby?lat=28.6&lon=77.2&radius=-5",
		} {
			assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, target, "").Code, target)
		}
		f.resolver.AssertNotCalled(t, "ResolveNearby", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
