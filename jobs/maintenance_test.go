package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/odyssey-erp/teamhub/internal/jobs"
)

type stubPurger struct {
	got     time.Duration
	removed int
	err     error
}

func (s *stubPurger) PurgeRead(_ context.Context, olderThan time.Duration) (int, error) {
	s.got = olderThan
	return s.removed, s.err
}

type stubSweeper struct {
	calls int
	err   error
}

func (s *stubSweeper) Sweep(context.Context) (int, error) {
	s.calls++
	return 2, s.err
}

func testMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(prometheus.NewRegistry())
}

func TestPurgeJobUsesPayloadRetention(t *testing.T) {
	purger := &stubPurger{removed: 4}
	job := NewPurgeJob(purger, 720*time.Hour, nil, testMetrics())

	task, err := NewPurgeTask(PurgePayload{RetentionHours: 24})
	require.NoError(t, err)
	require.NoError(t, job.Handle(t.Context(), task))
	assert.Equal(t, 24*time.Hour, purger.got)

	task, err = NewPurgeTask(PurgePayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(t.Context(), task))
	assert.Equal(t, 720*time.Hour, purger.got)

	bad := asynq.NewTask(TaskNotificationsPurge, []byte("{"))
	require.ErrorIs(t, job.Handle(t.Context(), bad), asynq.SkipRetry)
}

func TestPurgeJobReturnsStoreErrors(t *testing.T) {
	boom := errors.New("store down")
	job := NewPurgeJob(&stubPurger{err: boom}, time.Hour, nil, testMetrics())
	task, err := NewPurgeTask(PurgePayload{})
	require.NoError(t, err)
	require.ErrorIs(t, job.Handle(t.Context(), task), boom)
}

func TestSweepJob(t *testing.T) {
	sweeper := &stubSweeper{}
	job := NewSweepJob(sweeper, nil, testMetrics())
	require.NoError(t, job.Handle(t.Context(), NewSweepTask()))
	assert.Equal(t, 1, sweeper.calls)

	var unset *SweepJob
	require.Error(t, unset.Handle(t.Context(), NewSweepTask()))
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestHealthHandler(t *testing.T) {
	for name, tc := range map[string]struct {
		inspector QueueInspector
		status    int
		body      string
	}{
		"no queue": {nil, http.StatusOK, `{"queue":"default","pending":0}`},
		"pending":  {stubInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 3}}, http.StatusOK, `{"queue":"default","pending":3}`},
		"down":     {stubInspector{err: errors.New("redis down")}, http.StatusServiceUnavailable, ""},
	} {
		t.Run(name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHandler(tc.inspector, nil).MountRoutes(r)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tc.status, rr.Code)
			if tc.body != "" {
				assert.JSONEq(t, tc.body, rr.Body.String())
			}
		})
	}
}
