package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"palbot/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	cfg := config.NewMockConfig(map[string]interface{}{
		"bot_token": "test_token",
		"log_dir":   t.TempDir(),
	})
	return NewScheduler(cfg)
}

func TestSchedulerRunsTasks(t *testing.T) {
	s := newTestScheduler(t)

	var ok, failing, panicking atomic.Int32
	require.NoError(t, s.RegisterFunc("@every 1s", "ok", func() error {
		ok.Add(1)
		return nil
	}))
	require.NoError(t, s.RegisterFunc("@every 1s", "failing", func() error {
		failing.Add(1)
		return errors.New("boom")
	}))
	require.NoError(t, s.RegisterFunc("@every 1s", "panicking", func() error {
		panicking.Add(1)
		panic("boom")
	}))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return ok.Load() >= 2 && failing.Load() >= 2 && panicking.Load() >= 2
	}, 5*time.Second, 50*time.Millisecond)
}

func TestSchedulerRegistration(t *testing.T) {
	s := newTestScheduler(t)

	s.RegisterNewMinuteFunc(func() error { return nil })
	s.RegisterNewHourFunc(func() error { return nil })
	require.NoError(t, s.RegisterFunc("0 3 * * *", "nightly", func() error { return nil }))

	err := s.RegisterFunc("every tuesday", "broken", func() error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	assert.Equal(t, []string{"minute-task", "hour-task", "nightly"}, s.Jobs())

	s.Start()
	s.Stop()
}
