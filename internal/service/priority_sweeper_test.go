package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRemover struct {
	calls int32
	err   error
}

func (c *countingRemover) RemovePriorities(ctx context.Context) (int64, error) {
	atomic.AddInt32(&c.calls, 1)
	return 1, c.err
}

func TestPrioritySweeperSweepNow(t *testing.T) {
	remover := &countingRemover{}
	sweeper := NewPrioritySweeper(remover, time.Hour, nil)

	cleared, err := sweeper.SweepNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	remover.err = errors.New("db down")
	_, err = sweeper.SweepNow(context.Background())
	assert.Error(t, err)
}

func TestPrioritySweeperRunsOnInterval(t *testing.T) {
	remover := &countingRemover{}
	sweeper := NewPrioritySweeper(remover, 10*time.Millisecond, nil)
	sweeper.Start(context.Background())
	defer sweeper.Stop()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&remover.calls) >= 2 }, time.Second, 5*time.Millisecond)
}
