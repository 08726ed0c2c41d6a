package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/latoulicious/holocron/pkg/logging"
)

type mockPruner struct {
	mock.Mock
}

func (m *mockPruner) PruneBefore(cutoff time.Time) (int64, error) {
	args := m.Called(cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func testLogger() logging.Logger {
	return logging.NewLoggerFactory().CreateLogger("retention_test")
}

func TestRetentionJob_RunUsesRetentionCutoff(t *testing.T) {
	fixed := time.Date(2025, 1, 19, 12, 0, 0, 0, time.UTC)
	pruner := &mockPruner{}
	pruner.On("PruneBefore", fixed.Add(-72*time.Hour)).Return(int64(42), nil)

	job, err := NewRetentionJob(pruner, 72*time.Hour, "@daily", testLogger())
	require.NoError(t, err)
	job.now = func() time.Time { return fixed }

	removed, err := job.Run()
	require.NoError(t, err)
	assert.Equal(t, int64(42), removed)
	pruner.AssertExpectations(t)
}

func TestRetentionJob_RunPropagatesPruneError(t *testing.T) {
	pruner := &mockPruner{}
	pruner.On("PruneBefore", mock.Anything).Return(int64(0), errors.New("db offline"))

	job, err := NewRetentionJob(pruner, time.Hour, "@hourly", testLogger())
	require.NoError(t, err)

	_, err = job.Run()
	assert.EqualError(t, err, "db offline")
}

func TestNewRetentionJob_RejectsBadInput(t *testing.T) {
	_, err := NewRetentionJob(&mockPruner{}, 0, "@daily", testLogger())
	assert.Error(t, err)

	_, err = NewRetentionJob(&mockPruner{}, time.Hour, "not a schedule", testLogger())
	assert.Error(t, err)
}

func TestRetentionJob_StartStop(t *testing.T) {
	job, err := NewRetentionJob(&mockPruner{}, time.Hour, "0 3 * * *", testLogger())
	require.NoError(t, err)

	job.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	job.Stop(ctx)
}
