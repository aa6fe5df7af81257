package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-assistant/internal/api/chat"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/searchlog"
)

func newTestRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	languages := chat.NewLanguageTable(nil, "Please respond in %s.", "the requested language", "en")
	store := chat.NewStore(time.Minute, func(id string) *chat.Session {
		return chat.NewSession(id, nil, nil, nil, languages, chat.Settings{Persona: "persona", MaxTranscript: 20}, logger)
	})

	return SetupRouter(&Config{
		ChatHandler:      chat.NewHandler(store, nil, 5000, logger),
		SearchLogHandler: searchlog.NewHandler(searchlog.NewService(nil, logger), logger),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
		AllowedOrigins: []string{"http://localhost:5173"},
	})
}

func TestSetupRouter(t *testing.T) {
	h := newTestRouter()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/ping", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/api/v1/chat/sessions", http.StatusCreated},
		{http.MethodPost, "/api/v1/chat/sessions/unknown/reset", http.StatusNotFound},
		{http.MethodGet, "/api/v1/chat/sessions/unknown/location", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/chat/sessions/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/v1/nearby", http.StatusBadRequest},
		{http.MethodGet, "/api/v1/admin/searches", http.StatusOK},
		{http.MethodGet, "/api/v1/admin/searches/summary", http.StatusOK},
		{http.MethodPut, "/api/v1/chat/sessions", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSetupRouter_CORS(t *testing.T) {
	h := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat/sessions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
