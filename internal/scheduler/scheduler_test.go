package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingResetter struct {
	calls atomic.Int32
	err   error
}

func (r *countingResetter) ResetDay(context.Context) error {
	r.calls.Add(1)
	return r.err
}

func TestNew_Validation(t *testing.T) {
	_, err := New("every midnight", "Asia/Jakarta", &countingResetter{}, nil)
	require.ErrorContains(t, err, "parse reset schedule")

	_, err = New("0 0 * * *", "Nowhere/Special", &countingResetter{}, nil)
	require.ErrorContains(t, err, "load timezone")
}

func TestScheduler_NextAfterUsesLocation(t *testing.T) {
	s, err := New("0 0 * * *", "Asia/Jakarta", &countingResetter{}, nil)
	require.NoError(t, err)

	// 20:00 UTC is 03:00 WIB the next day.
	from := time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)
	next := s.NextAfter(from)

	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, jakarta), next.In(jakarta))
	require.Equal(t, time.Date(2026, 3, 3, 17, 0, 0, 0, time.UTC), next.UTC())
}

func TestScheduler_Run(t *testing.T) {
	r := &countingResetter{}
	s, err := New("0 0 * * *", "UTC", r, nil)
	require.NoError(t, err)

	s.Run(context.Background())
	require.Equal(t, int32(1), r.calls.Load())

	r.err = errors.New("store down")
	s.Run(context.Background())
	require.Equal(t, int32(2), r.calls.Load())
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := New("0 0 * * *", "UTC", &countingResetter{}, nil)
	require.NoError(t, err)
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	require.True(t, s.Next().After(time.Now()))
}
