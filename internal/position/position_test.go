package position

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuartshay/shot-tracker/internal/calculator"
)

var teeBox = calculator.Coordinate{Latitude: 40.736097, Longitude: -74.039373}

func staticProvider(clock clockwork.Clock, calls *atomic.Int32) ProviderFunc {
	return func(_ context.Context, _ Request) (Fix, error) {
		calls.Add(1)
		return Fix{Coordinate: teeBox, AccuracyMeters: 5, Timestamp: clock.Now()}, nil
	}
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.True(t, o.EnableHighAccuracy)
	assert.Equal(t, 15*time.Second, o.Timeout)
	assert.Zero(t, o.MaximumAge)
}

func TestGetCurrentPosition_Success(t *testing.T) {
	var got Request
	provider := ProviderFunc(func(_ context.Context, req Request) (Fix, error) {
		got = req
		return Fix{Coordinate: teeBox}, nil
	})

	l := NewLocator(provider, DefaultOptions(), nil)
	coord, err := l.GetCurrentPosition(context.Background(), "pixel8")

	require.NoError(t, err)
	assert.Equal(t, teeBox, coord)
	assert.Equal(t, "pixel8", got.DeviceID)
	assert.True(t, got.HighAccuracy)

	_, err = l.GetCurrentPosition(context.Background(), "pixel8", WithHighAccuracy(false))
	require.NoError(t, err)
	assert.False(t, got.HighAccuracy)
}

func TestGetCurrentPosition_Failures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "permission denied", err: ErrPermissionDenied, expected: ErrPermissionDenied},
		{name: "wrapped permission denied", err: &Error{Kind: ErrPermissionDenied, Err: errors.New("revoked")}, expected: ErrPermissionDenied},
		{name: "unavailable", err: ErrPositionUnavailable, expected: ErrPositionUnavailable},
		{name: "unclassified error is unavailable", err: errors.New("gps chip offline"), expected: ErrPositionUnavailable},
		{name: "provider deadline is a timeout", err: context.DeadlineExceeded, expected: ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := ProviderFunc(func(context.Context, Request) (Fix, error) {
				return Fix{}, tt.err
			})
			l := NewLocator(provider, DefaultOptions(), nil)

			_, err := l.GetCurrentPosition(context.Background(), "pixel8")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)

			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.expected, perr.Kind)
		})
	}
}

func TestGetCurrentPosition_Timeout(t *testing.T) {
	provider := ProviderFunc(func(ctx context.Context, _ Request) (Fix, error) {
		<-ctx.Done()
		return Fix{}, ctx.Err()
	})
	l := NewLocator(provider, DefaultOptions(), nil)

	start := time.Now()
	_, err := l.GetCurrentPosition(context.Background(), "pixel8", WithTimeout(20*time.Millisecond))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestGetCurrentPosition_ParentCanceled(t *testing.T) {
	provider := ProviderFunc(func(ctx context.Context, _ Request) (Fix, error) {
		<-ctx.Done()
		return Fix{}, ctx.Err()
	})
	l := NewLocator(provider, DefaultOptions(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.GetCurrentPosition(ctx, "pixel8")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestGetCurrentPosition_MaximumAge(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC))
	var calls atomic.Int32
	l := NewLocator(staticProvider(clock, &calls), DefaultOptions(), clock)
	ctx := context.Background()

	_, err := l.GetCurrentPosition(ctx, "pixel8")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	// default options never reuse a fix
	_, err = l.GetCurrentPosition(ctx, "pixel8")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	clock.Advance(10 * time.Second)
	coord, err := l.GetCurrentPosition(ctx, "pixel8", WithMaximumAge(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, teeBox, coord)
	assert.Equal(t, int32(2), calls.Load(), "fresh enough fix should be reused")

	// other devices have their own cache
	_, err = l.GetCurrentPosition(ctx, "iphone", WithMaximumAge(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())

	clock.Advance(31 * time.Second)
	_, err = l.GetCurrentPosition(ctx, "pixel8", WithMaximumAge(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load(), "stale fix should hit the provider")
}

func TestGetCurrentPosition_ConcurrentCalls(t *testing.T) {
	clock := clockwork.NewRealClock()
	var calls atomic.Int32
	l := NewLocator(staticProvider(clock, &calls), DefaultOptions(), clock)

	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := l.GetCurrentPosition(context.Background(), "pixel8")
			errs <- err
		}()
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, <-errs)
	}
	assert.Equal(t, int32(10), calls.Load())
}

type fakeSource struct {
	fix Fix
	err error
}

func (f fakeSource) LatestFix(context.Context, string) (Fix, error) {
	return f.fix, f.err
}

func TestDeviceProvider(t *testing.T) {
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	fresh := Fix{Coordinate: teeBox, AccuracyMeters: 8, Timestamp: now.Add(-time.Minute)}
	cfg := DeviceProviderConfig{
		AllowedDevices:    []string{"pixel8"},
		StaleAfter:        5 * time.Minute,
		MaxAccuracyMeters: 25,
	}

	t.Run("returns the latest fix", func(t *testing.T) {
		p := NewDeviceProvider(fakeSource{fix: fresh}, cfg, clock)
		fix, err := p.Locate(context.Background(), Request{DeviceID: "pixel8", HighAccuracy: true})
		require.NoError(t, err)
		assert.Equal(t, fresh, fix)
	})

	t.Run("untracked device is denied", func(t *testing.T) {
		p := NewDeviceProvider(fakeSource{fix: fresh}, cfg, clock)
		_, err := p.Locate(context.Background(), Request{DeviceID: "stranger"})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("empty allow list permits any device", func(t *testing.T) {
		p := NewDeviceProvider(fakeSource{fix: fresh}, DeviceProviderConfig{}, clock)
		_, err := p.Locate(context.Background(), Request{DeviceID: "stranger"})
		assert.NoError(t, err)
	})

	t.Run("missing device id", func(t *testing.T) {
		p := NewDeviceProvider(fakeSource{fix: fresh}, cfg, clock)
		_, err := p.Locate(context.Background(), Request{})
		assert.ErrorIs(t, err, ErrPositionUnavailable)
	})

	t.Run("stale fix is unavailable", func(t *testing.T) {
		old := fresh
		old.Timestamp = now.Add(-10 * time.Minute)
		p := NewDeviceProvider(fakeSource{fix: old}, cfg, clock)
		_, err := p.Locate(context.Background(), Request{DeviceID: "pixel8"})
		assert.ErrorIs(t, err, ErrPositionUnavailable)
	})

	t.Run("imprecise fix only rejected for high accuracy", func(t *testing.T) {
		coarse := fresh
		coarse.AccuracyMeters = 120
		p := NewDeviceProvider(fakeSource{fix: coarse}, cfg, clock)

		_, err := p.Locate(context.Background(), Request{DeviceID: "pixel8", HighAccuracy: true})
		assert.ErrorIs(t, err, ErrPositionUnavailable)

		_, err = p.Locate(context.Background(), Request{DeviceID: "pixel8", HighAccuracy: false})
		assert.NoError(t, err)
	})

	t.Run("source errors pass through the locator classified", func(t *testing.T) {
		p := NewDeviceProvider(fakeSource{err: ErrPermissionDenied}, cfg, clock)
		l := NewLocator(p, DefaultOptions(), clock)
		_, err := l.GetCurrentPosition(context.Background(), "pixel8")
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestError_Message(t *testing.T) {
	err := &Error{Kind: ErrTimeout, DeviceID: "pixel8"}
	assert.Equal(t, "device pixel8: location request timed out", err.Error())

	err = &Error{Kind: ErrPositionUnavailable, DeviceID: "pixel8", Err: errors.New("no fix")}
	assert.Equal(t, "device pixel8: location information unavailable: no fix", err.Error())
}
