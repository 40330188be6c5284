package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudays/sudays-backend/pkg/logger"
)

type stubCleaner struct {
	calls atomic.Int32
	err   error
}

func (s *stubCleaner) CleanupExpired() (int64, error) {
	s.calls.Add(1)
	return 2, s.err
}

func TestVerificationCleanupScheduler_RunOnce(t *testing.T) {
	cleaner := &stubCleaner{}
	s := NewVerificationCleanupScheduler(cleaner, "*/30 * * * *", logger.Nop())

	s.RunOnce()
	assert.Equal(t, int32(1), cleaner.calls.Load())

	cleaner.err = errors.New("database is locked")
	s.RunOnce()
	assert.Equal(t, int32(2), cleaner.calls.Load())
}

func TestVerificationCleanupScheduler_StartStop(t *testing.T) {
	s := NewVerificationCleanupScheduler(&stubCleaner{}, "*/30 * * * *", logger.Nop())

	require.NoError(t, s.Start())
	s.Stop()
}

func TestVerificationCleanupScheduler_InvalidSchedule(t *testing.T) {
	s := NewVerificationCleanupScheduler(&stubCleaner{}, "every half hour", logger.Nop())

	assert.Error(t, s.Start())
}
