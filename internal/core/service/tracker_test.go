package service

import (
	"errors"
	"horsefax/internal/core/domain/message"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageTracker(t *testing.T) {
	tracker := NewUsageTracker()

	tracker.TrackUpdate()
	tracker.TrackUpdate()
	tracker.TrackMessage(message.KindText)
	tracker.TrackMessage(message.KindPhoto)
	tracker.TrackMessage(message.KindText)
	tracker.TrackCommand("ping")
	tracker.TrackFailure("command:ping", errors.New("boom"))

	assert.InDelta(t, 2, testutil.ToFloat64(tracker.updates), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(tracker.messages.WithLabelValues("text")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(tracker.messages.WithLabelValues("photo")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(tracker.commands.WithLabelValues("ping")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(tracker.failures.WithLabelValues("command:ping")), 0)
}

func TestNilUsageTracker(t *testing.T) {
	var tracker *UsageTracker

	assert.NotPanics(t, func() {
		tracker.TrackUpdate()
		tracker.TrackMessage(message.KindText)
		tracker.TrackCommand("ping")
		tracker.TrackFailure("message", errors.New("boom"))
	})
}

func TestUsageTrackerHandler(t *testing.T) {
	tracker := NewUsageTracker()
	tracker.TrackCommand("roll")

	srv := httptest.NewServer(tracker.Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `horsefax_commands_total{command="roll"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
