package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"message":"hi","count":2}`},
		{name: "empty", body: ``, wantErr: "body must not be empty"},
		{name: "syntax", body: `{"message":}`, wantErr: "badly-formed JSON"},
		{name: "truncated", body: `{"message":"hi"`, wantErr: "badly-formed JSON"},
		{name: "wrong type", body: `{"count":"two"}`, wantErr: `field "count"`},
		{name: "unknown field", body: `{"msg":"hi"}`, wantErr: `unknown key "msg"`},
		{name: "two values", body: `{"message":"a"}{"message":"b"}`, wantErr: "single JSON value"},
		{name: "too large", body: `{"message":"` + strings.Repeat("a", maxBodyBytes) + `"}`, wantErr: "must not be larger"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := DecodeJSONBody(httptest.NewRecorder(), r, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, payload{Message: "hi", Count: 2}, dst)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestErrorResponse(t *testing.T) {
	var rec *httptest.ResponseRecorder
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec = httptest.NewRecorder()
		ErrorResponse(rec, r, http.StatusNotFound, "session not found")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "session not found", body["error"])
	assert.NotEmpty(t, body["request_id"])
}

func TestWriteJSONResponse_NoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONResponse(rec, httptest.NewRequest(http.MethodDelete, "/", nil), http.StatusNoContent, map[string]string{"ignored": "x"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
