package apply

import (
	"context"
	"time"

	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/meshcli"
)

// Runner runs one invocation of the configuration tool. *meshcli.Executor
// implements it; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, section string, args []string, timeout time.Duration) meshcli.Result
}

// Closer is implemented by exactly the objects that own the device
// transport. Close must be safe to call more than once.
type Closer interface {
	Close() error
}

// Identity describes the connected device.
type Identity struct {
	ID              string `json:"id,omitempty" yaml:"id,omitempty"`
	HWModel         string `json:"hw_model,omitempty" yaml:"hw_model,omitempty"`
	FirmwareVersion string `json:"firmware_version,omitempty" yaml:"firmware_version,omitempty"`
	Port            string `json:"port,omitempty" yaml:"port,omitempty"`
}

// SnapshotSource is a live connection that reads the device configuration.
type SnapshotSource interface {
	Closer
	Identity() Identity
	// Snapshot reads the configuration. forceRefresh bypasses any cached read.
	Snapshot(ctx context.Context, forceRefresh bool) (*deviceconfig.Snapshot, error)
	// Ready returns nil once the device answers configuration requests.
	Ready(ctx context.Context) error
}

// Transport opens connections to a device by port identifier.
type Transport interface {
	Open(ctx context.Context, port string) (SnapshotSource, error)
}
