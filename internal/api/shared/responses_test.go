package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	RespondWithJSON(w, r, http.StatusCreated, map[string]int{"due": 3})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"due":3}`, w.Body.String())
}

func TestRespondWithJSON_NilBody(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	RespondWithJSON(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		opts      []ResponseOption
		wantLevel string
	}{
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
		{name: "client error", status: http.StatusBadRequest, wantLevel: "DEBUG"},
		{name: "elevated client error", status: http.StatusUnauthorized, opts: []ResponseOption{WithElevatedLogLevel()}, wantLevel: "WARN"},
		{name: "rate limited", status: http.StatusTooManyRequests, wantLevel: "WARN"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			r := httptest.NewRequest(http.MethodGet, "/reviews/due", nil)
			ctx := logger.WithLogger(SetTraceID(r.Context(), "trace-1"), log)
			r = r.WithContext(ctx)
			w := httptest.NewRecorder()

			cause := errors.New("query postgres://recall:pw@db/recall failed")
			RespondWithErrorAndLog(w, r, tc.status, "Something went wrong", cause, tc.opts...)

			assert.Equal(t, tc.status, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Something went wrong", body.Error)
			assert.Equal(t, "trace-1", body.TraceID)
			assert.NotContains(t, w.Body.String(), "postgres")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tc.wantLevel, entry["level"])
			assert.Equal(t, "trace-1", entry["trace_id"])
			assert.NotContains(t, entry["error"], "pw@")
		})
	}
}
