package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/mlmledger/internal/usecase"
	"github.com/iho/mlmledger/internal/usecase/mocks"
)

type stubProcessor struct {
	ProcessFunc func(ctx context.Context, limit int) (*usecase.CommissionSweepResult, error)
	calls       int
}

func (s *stubProcessor) ProcessPendingCommissions(ctx context.Context, limit int) (*usecase.CommissionSweepResult, error) {
	s.calls++
	return s.ProcessFunc(ctx, limit)
}

type stubRecorder struct {
	outcomes []string
}

func (s *stubRecorder) SweepRun(outcome string) {
	s.outcomes = append(s.outcomes, outcome)
}

func TestRunOnceHoldsLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	lock := mocks.NewMockSweepLock(ctrl)

	gomock.InOrder(
		lock.EXPECT().Acquire(gomock.Any(), "commission-sweep", 5*time.Minute).Return(true, nil),
		lock.EXPECT().Release(gomock.Any(), "commission-sweep").Return(nil),
	)

	proc := &stubProcessor{ProcessFunc: func(_ context.Context, limit int) (*usecase.CommissionSweepResult, error) {
		assert.Equal(t, 25, limit)
		return &usecase.CommissionSweepResult{Processed: 2, Successful: 2}, nil
	}}
	rec := &stubRecorder{}

	s := New(Config{Processor: proc, Lock: lock, Recorder: rec, Logger: zerolog.Nop(), BatchSize: 25, LockTTL: 5 * time.Minute})

	result, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, []string{"ran"}, rec.outcomes)
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	ctrl := gomock.NewController(t)
	lock := mocks.NewMockSweepLock(ctrl)
	lock.EXPECT().Acquire(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

	proc := &stubProcessor{}
	rec := &stubRecorder{}
	s := New(Config{Processor: proc, Lock: lock, Recorder: rec, Logger: zerolog.Nop()})

	result, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Zero(t, proc.calls)
	assert.Equal(t, []string{"skipped"}, rec.outcomes)
}

func TestRunOnceReleasesLockOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	lock := mocks.NewMockSweepLock(ctrl)
	lock.EXPECT().Acquire(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	lock.EXPECT().Release(gomock.Any(), "commission-sweep").Return(nil)

	boom := errors.New("list pending revenue shares: connection refused")
	proc := &stubProcessor{ProcessFunc: func(context.Context, int) (*usecase.CommissionSweepResult, error) {
		return nil, boom
	}}
	rec := &stubRecorder{}
	s := New(Config{Processor: proc, Lock: lock, Recorder: rec, Logger: zerolog.Nop()})

	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"failed"}, rec.outcomes)
}

func TestRunOnceLockError(t *testing.T) {
	ctrl := gomock.NewController(t)
	lock := mocks.NewMockSweepLock(ctrl)
	lock.EXPECT().Acquire(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))

	proc := &stubProcessor{}
	s := New(Config{Processor: proc, Lock: lock, Logger: zerolog.Nop()})

	_, err := s.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, proc.calls)
}

func TestRunOnceWithoutLock(t *testing.T) {
	proc := &stubProcessor{ProcessFunc: func(_ context.Context, limit int) (*usecase.CommissionSweepResult, error) {
		assert.Equal(t, usecase.DefaultSweepBatch, limit)
		return &usecase.CommissionSweepResult{}, nil
	}}

	_, err := New(Config{Processor: proc, Logger: zerolog.Nop()}).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, proc.calls)
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	proc := &stubProcessor{ProcessFunc: func(context.Context, int) (*usecase.CommissionSweepResult, error) {
		return &usecase.CommissionSweepResult{}, nil
	}}
	s := New(Config{Processor: proc, Logger: zerolog.Nop(), Interval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
