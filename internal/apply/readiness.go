package apply

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/siderolabs/go-retry/retry"
)

// Channel readiness poll defaults.
const (
	ChannelsWindow   = 6 * time.Second
	ChannelsInterval = 200 * time.Millisecond
)

var errNoChannels = errors.New("channel table is empty")

// reconnect reopens the transport on the original port and polls until
// the device answers. A source that opened but never became ready is
// returned together with the error.
func (o *Orchestrator) reconnect(ctx context.Context) (SnapshotSource, error) {
	var src SnapshotSource

	err := retry.Constant(o.readyWindow, retry.WithUnits(o.readyInterval)).
		RetryWithContext(ctx, func(ctx context.Context) error {
			if src == nil {
				s, err := o.transport.Open(ctx, o.port)
				if err != nil {
					return retry.ExpectedError(err)
				}
				src = s
			}
			if err := src.Ready(ctx); err != nil {
				return retry.ExpectedError(err)
			}
			return nil
		})
	if err != nil {
		return src, fmt.Errorf("reconnect to %s: %w", o.port, err)
	}
	return src, nil
}

// WaitForChannels polls src with forced reads until the channel table is
// non-empty. The tool fills the table asynchronously after it exits, so
// callers run this after an apply that touched channels before treating
// the device as ready.
func WaitForChannels(ctx context.Context, src SnapshotSource, window, interval time.Duration) (*deviceconfig.Snapshot, error) {
	if window <= 0 {
		window = ChannelsWindow
	}
	if interval <= 0 {
		interval = ChannelsInterval
	}

	var snap *deviceconfig.Snapshot
	err := retry.Constant(window, retry.WithUnits(interval)).
		RetryWithContext(ctx, func(ctx context.Context) error {
			s, err := src.Snapshot(ctx, true)
			if err != nil {
				return retry.ExpectedError(err)
			}
			snap = s
			if len(s.Channels) == 0 {
				return retry.ExpectedError(errNoChannels)
			}
			return nil
		})
	if err != nil {
		return snap, fmt.Errorf("waiting for channels: %w", err)
	}
	return snap, nil
}
