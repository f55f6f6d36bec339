// Package position acquires the current GPS position of a tracked device.
//
// A Locator issues one request per call to a Provider and waits for a fix
// until the configured timeout. Failures are reported as one of three kinds,
// checked with errors.Is: ErrPermissionDenied, ErrPositionUnavailable and
// ErrTimeout. No request is retried.
package position

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/stuartshay/shot-tracker/internal/calculator"
)

// Failure kinds
var (
	ErrPermissionDenied    = errors.New("location access denied")
	ErrPositionUnavailable = errors.New("location information unavailable")
	ErrTimeout             = errors.New("location request timed out")
)

// DefaultTimeout bounds how long a request waits for a fix
const DefaultTimeout = 15 * time.Second

// Error is a classified position failure
type Error struct {
	Kind     error
	DeviceID string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("device %s: %v", e.DeviceID, e.Kind)
	}
	return fmt.Sprintf("device %s: %v: %v", e.DeviceID, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Fix is a position reported by a provider
type Fix struct {
	Coordinate     calculator.Coordinate
	AccuracyMeters float64
	Timestamp      time.Time
}

// Request is what a Locator asks of its Provider
type Request struct {
	DeviceID     string
	HighAccuracy bool
}

// Provider is the underlying location source
type Provider interface {
	Locate(ctx context.Context, req Request) (Fix, error)
}

// ProviderFunc adapts a function to a Provider
type ProviderFunc func(ctx context.Context, req Request) (Fix, error)

// Locate calls f
func (f ProviderFunc) Locate(ctx context.Context, req Request) (Fix, error) {
	return f(ctx, req)
}

// Options control a single position request
type Options struct {
	// MaximumAge is how old a previously acquired fix may be and still be
	// returned without asking the provider. Zero always asks the provider.
	MaximumAge time.Duration

	// Timeout bounds the wait for the provider
	Timeout time.Duration

	// EnableHighAccuracy asks the provider for its most precise fix
	EnableHighAccuracy bool
}

// DefaultOptions requests a fresh, high-accuracy fix within 15 seconds
func DefaultOptions() Options {
	return Options{
		MaximumAge:         0,
		Timeout:            DefaultTimeout,
		EnableHighAccuracy: true,
	}
}

// Option overrides one field of Options for a call
type Option func(*Options)

// WithMaximumAge accepts cached fixes up to d old
func WithMaximumAge(d time.Duration) Option {
	return func(o *Options) { o.MaximumAge = d }
}

// WithTimeout sets the wait bound for the provider
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithHighAccuracy toggles the high accuracy hint
func WithHighAccuracy(enabled bool) Option {
	return func(o *Options) { o.EnableHighAccuracy = enabled }
}

// Locator acquires positions from a Provider
type Locator struct {
	provider Provider
	defaults Options
	clock    clockwork.Clock

	mu   sync.Mutex
	last map[string]Fix
}

// NewLocator creates a Locator. Zero Timeout in defaults becomes DefaultTimeout;
// a nil clock uses real time.
func NewLocator(provider Provider, defaults Options, clock clockwork.Clock) *Locator {
	if defaults.Timeout <= 0 {
		defaults.Timeout = DefaultTimeout
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Locator{
		provider: provider,
		defaults: defaults,
		clock:    clock,
		last:     make(map[string]Fix),
	}
}

// GetCurrentPosition returns the device's current coordinate. The call blocks
// until the provider answers, the timeout elapses, or ctx is done.
func (l *Locator) GetCurrentPosition(ctx context.Context, deviceID string, opts ...Option) (calculator.Coordinate, error) {
	o := l.defaults
	for _, opt := range opts {
		opt(&o)
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}

	if o.MaximumAge > 0 {
		if fix, ok := l.cached(deviceID, o.MaximumAge); ok {
			log.Debug().Str("device_id", deviceID).Time("fix_time", fix.Timestamp).Msg("Using cached position")
			return fix.Coordinate, nil
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	type result struct {
		fix Fix
		err error
	}
	// Buffered so an abandoned provider call never blocks
	done := make(chan result, 1)
	go func() {
		fix, err := l.provider.Locate(reqCtx, Request{DeviceID: deviceID, HighAccuracy: o.EnableHighAccuracy})
		done <- result{fix: fix, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if ctx.Err() != nil {
				return calculator.Coordinate{}, fmt.Errorf("position request canceled: %w", ctx.Err())
			}
			log.Debug().Err(r.err).Str("device_id", deviceID).Msg("Position request failed")
			return calculator.Coordinate{}, classify(deviceID, r.err)
		}
		l.remember(deviceID, r.fix)
		return r.fix.Coordinate, nil
	case <-reqCtx.Done():
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return calculator.Coordinate{}, &Error{Kind: ErrTimeout, DeviceID: deviceID}
		}
		return calculator.Coordinate{}, fmt.Errorf("position request canceled: %w", ctx.Err())
	}
}

func (l *Locator) cached(deviceID string, maxAge time.Duration) (Fix, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fix, ok := l.last[deviceID]
	if !ok {
		return Fix{}, false
	}
	if l.clock.Since(fix.Timestamp) > maxAge {
		return Fix{}, false
	}
	return fix, true
}

func (l *Locator) remember(deviceID string, fix Fix) {
	if fix.Timestamp.IsZero() {
		fix.Timestamp = l.clock.Now()
	}
	l.mu.Lock()
	l.last[deviceID] = fix
	l.mu.Unlock()
}

// classify maps a provider error onto a failure kind
func classify(deviceID string, err error) error {
	var perr *Error
	if errors.As(err, &perr) {
		if perr.DeviceID == "" {
			cp := *perr
			cp.DeviceID = deviceID
			return &cp
		}
		return perr
	}

	switch {
	case errors.Is(err, ErrPermissionDenied):
		return &Error{Kind: ErrPermissionDenied, DeviceID: deviceID, Err: err}
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: ErrTimeout, DeviceID: deviceID, Err: err}
	default:
		return &Error{Kind: ErrPositionUnavailable, DeviceID: deviceID, Err: err}
	}
}
