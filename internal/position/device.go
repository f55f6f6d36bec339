package position

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// FixSource returns the most recent fix reported by a device
type FixSource interface {
	LatestFix(ctx context.Context, deviceID string) (Fix, error)
}

// DeviceProviderConfig configures a DeviceProvider
type DeviceProviderConfig struct {
	// AllowedDevices restricts which devices may be located; empty allows all
	AllowedDevices []string

	// StaleAfter rejects fixes older than this; zero disables the check
	StaleAfter time.Duration

	// MaxAccuracyMeters rejects imprecise fixes on high accuracy requests;
	// zero disables the check
	MaxAccuracyMeters float64
}

// DeviceProvider serves positions from the fixes devices report to the
// location store
type DeviceProvider struct {
	source  FixSource
	allowed map[string]struct{}
	cfg     DeviceProviderConfig
	clock   clockwork.Clock
}

// NewDeviceProvider creates a DeviceProvider over source
func NewDeviceProvider(source FixSource, cfg DeviceProviderConfig, clock clockwork.Clock) *DeviceProvider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedDevices))
	for _, d := range cfg.AllowedDevices {
		allowed[d] = struct{}{}
	}
	return &DeviceProvider{
		source:  source,
		allowed: allowed,
		cfg:     cfg,
		clock:   clock,
	}
}

// Locate implements Provider
func (p *DeviceProvider) Locate(ctx context.Context, req Request) (Fix, error) {
	if req.DeviceID == "" {
		return Fix{}, &Error{Kind: ErrPositionUnavailable, Err: fmt.Errorf("device id is required")}
	}
	if len(p.allowed) > 0 {
		if _, ok := p.allowed[req.DeviceID]; !ok {
			return Fix{}, &Error{Kind: ErrPermissionDenied, DeviceID: req.DeviceID, Err: fmt.Errorf("device is not tracked")}
		}
	}

	fix, err := p.source.LatestFix(ctx, req.DeviceID)
	if err != nil {
		return Fix{}, err
	}

	if p.cfg.StaleAfter > 0 {
		if age := p.clock.Since(fix.Timestamp); age > p.cfg.StaleAfter {
			return Fix{}, &Error{
				Kind:     ErrPositionUnavailable,
				DeviceID: req.DeviceID,
				Err:      fmt.Errorf("latest fix is %s old", age.Round(time.Second)),
			}
		}
	}

	if req.HighAccuracy && p.cfg.MaxAccuracyMeters > 0 && fix.AccuracyMeters > p.cfg.MaxAccuracyMeters {
		return Fix{}, &Error{
			Kind:     ErrPositionUnavailable,
			DeviceID: req.DeviceID,
			Err:      fmt.Errorf("fix accuracy %.0fm exceeds %.0fm", fix.AccuracyMeters, p.cfg.MaxAccuracyMeters),
		}
	}

	return fix, nil
}
