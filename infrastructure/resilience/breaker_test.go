package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"studycapture/infrastructure/config"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingObserver struct {
	mu     sync.Mutex
	states []gobreaker.State
}

func (r *recordingObserver) BreakerStateChanged(_ string, s gobreaker.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func testBreakerConfig() config.Breaker {
	return config.Breaker{
		FailureRatio: 0.5,
		MinRequests:  2,
		MaxRequests:  1,
		Interval:     time.Minute,
		OpenTimeout:  time.Hour,
	}
}

func TestCall_PassesThroughResults(t *testing.T) {
	b := NewBreaker("llm", testBreakerConfig(), zap.NewNop(), nil)

	got, err := Call(b, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	boom := errors.New("boom")
	_, err = Call(b, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}

func TestCall_OpensAfterFailures(t *testing.T) {
	obs := &recordingObserver{}
	b := NewBreaker("notion", testBreakerConfig(), zap.NewNop(), obs)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_, err := Call(b, func() (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
	}

	calls := 0
	_, err := Call(b, func() (int, error) { calls++; return 1, nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 0, calls)
	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.Equal(t, []gobreaker.State{gobreaker.StateClosed, gobreaker.StateOpen}, obs.states)
}

func TestCall_CancellationDoesNotTrip(t *testing.T) {
	b := NewBreaker("llm", testBreakerConfig(), zap.NewNop(), nil)

	for i := 0; i < 5; i++ {
		_, err := Call(b, func() (int, error) { return 0, context.Canceled })
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestCall_NilBreaker(t *testing.T) {
	got, err := Call[int](nil, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}
