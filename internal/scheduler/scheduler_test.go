package scheduler

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()

	s, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Stop())
	})
	return s
}

func TestAddJob(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t)
	require.NoError(t, s.AddJob("db-maintenance", "0 3 * * *", func() {}))
}

func TestAddJobValidation(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t)

	assert.Error(t, s.AddJob("", "0 3 * * *", func() {}))
	assert.Error(t, s.AddJob("job", "", func() {}))
	assert.Error(t, s.AddJob("job", "0 3 * * *", nil))
	assert.Error(t, s.AddJob("job", "not a cron expression", func() {}))
}
