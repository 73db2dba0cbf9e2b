package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/platform/clock"
	"github.com/phrazzld/recall-api/internal/platform/lock"
	"github.com/phrazzld/recall-api/internal/service/adaptation"
	"github.com/phrazzld/recall-api/internal/service/review"
	"github.com/phrazzld/recall-api/internal/store/memstore"
	"github.com/phrazzld/recall-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 0, LogLevel: "debug", ShutdownTimeout: 5 * time.Second},
		Auth:   config.AuthConfig{JWTSecret: "0123456789abcdef0123456789abcdef", TokenLifetime: time.Hour},
		Adaptation: config.AdaptationConfig{
			Schedule:    true,
			RunAt:       "03:00",
			WorkerCount: 2,
			LockTTL:     time.Minute,
		},
	}
}

func newMemApplication(t *testing.T, cfg *config.Config, logs *bytes.Buffer) *application {
	t.Helper()
	db := memstore.New()
	app := &application{
		config:     cfg,
		logger:     slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		clock:      clock.NewFake(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
		stores:     db.Stores(),
		transactor: db,
		locker:     lock.NewMemory(),
	}
	require.NoError(t, app.initServices())
	return app
}

func TestInitServices(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	app := newMemApplication(t, testConfig(), &logs)
	assert.NotNil(t, app.reviewService)
	assert.NotNil(t, app.profileService)
	assert.NotNil(t, app.runner)
	assert.NotNil(t, app.scheduler)

	cfg := testConfig()
	cfg.Adaptation.Schedule = false
	app = newMemApplication(t, cfg, &logs)
	assert.Nil(t, app.scheduler)
}

func TestInitServices_ShortSecret(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Auth.JWTSecret = "short"
	db := memstore.New()
	app := &application{
		config:     cfg,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:      clock.Real{},
		stores:     db.Stores(),
		transactor: db,
		locker:     lock.NewMemory(),
	}
	assert.Error(t, app.initServices())
}

func TestHandleJobError(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	app := newMemApplication(t, testConfig(), &logs)
	job := task.JobFunc{JobName: "daily_adaptation"}

	app.handleJobError(job, adaptation.ErrBatchInProgress)
	assert.Contains(t, logs.String(), `"level":"INFO"`)
	assert.Contains(t, logs.String(), "already running elsewhere")

	logs.Reset()
	app.handleJobError(job, errors.New("boom"))
	assert.Contains(t, logs.String(), `"level":"ERROR"`)
}

func TestServe_GracefulShutdown(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	app := newMemApplication(t, testConfig(), &logs)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.serve(ctx, ln, apiRouter(app))
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/reviews/due")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

// deadlineReviews reports whether GetDueCount saw a request deadline.
type deadlineReviews struct {
	review.Service
	sawDeadline chan bool
}

func (d *deadlineReviews) GetDueCount(ctx context.Context, _ uuid.UUID) (int, error) {
	_, ok := ctx.Deadline()
	d.sawDeadline <- ok
	return 0, nil
}

func TestAPIRouter_RequestTimeout(t *testing.T) {
	t.Parallel()

	for _, timeout := range []time.Duration{0, time.Minute} {
		var logs bytes.Buffer
		cfg := testConfig()
		cfg.Server.RequestTimeout = timeout
		app := newMemApplication(t, cfg, &logs)
		reviews := &deadlineReviews{Service: app.reviewService, sawDeadline: make(chan bool, 1)}
		app.reviewService = reviews

		token, err := app.jwtService.GenerateToken(context.Background(), uuid.New())
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/reviews/due/count", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		apiRouter(app).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, timeout > 0, <-reviews.sawDeadline, "timeout %s", timeout)
	}
}
