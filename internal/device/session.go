package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/muurk/meshcfg/internal/apply"
	"github.com/muurk/meshcfg/internal/deviceconfig"
	"go.uber.org/zap"
)

// Tool invocation bounds for reads.
const (
	// ExportTimeout bounds `--export-config`, which walks the whole config.
	ExportTimeout = 30 * time.Second
	// MetadataTimeout bounds the `--device-metadata` readiness probe.
	MetadataTimeout = 10 * time.Second
)

// ErrClosed is returned by reads on a released session.
var ErrClosed = errors.New("device session is closed")

// Session is a read connection to one device. Reads go through the
// meshtastic tool; the session itself only holds the port lock and the
// cached snapshot. Writes are done by the apply engine after Close.
type Session struct {
	runner apply.Runner
	port   string
	logger *zap.Logger

	mu       sync.Mutex
	lock     *Lock
	cached   *deviceconfig.Snapshot
	metadata *deviceconfig.Metadata
}

// Transport opens sessions. It satisfies apply.Transport so the engine can
// reopen the port after a write.
type Transport struct {
	runner  apply.Runner
	lockDir string
	logger  *zap.Logger
}

// NewTransport creates a transport whose sessions read through runner.
// runner must already address the port being opened (see
// meshcli.Config.Port). An empty lockDir uses the system temp directory.
func NewTransport(runner apply.Runner, lockDir string, logger *zap.Logger) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{runner: runner, lockDir: lockDir, logger: logger}
}

// Open claims port and returns a session. It does not talk to the device;
// call Ready to probe it.
func (t *Transport) Open(_ context.Context, port string) (apply.SnapshotSource, error) {
	return t.OpenSession(port)
}

// OpenSession is Open with the concrete return type.
func (t *Transport) OpenSession(port string) (*Session, error) {
	if port == "" {
		return nil, errors.New("no port given")
	}
	lock, err := AcquireLock(t.lockDir, port)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("claimed port", zap.String("port", port), zap.String("lock", lock.Path()))
	return &Session{
		runner: t.runner,
		port:   port,
		logger: t.logger.With(zap.String("port", port)),
		lock:   lock,
	}, nil
}

// Identity returns what is known about the device so far. HWModel and
// FirmwareVersion are filled in once Ready or a read has succeeded. The
// tool does not expose the node number on these reads, so the port
// doubles as the device ID.
func (s *Session) Identity() apply.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := apply.Identity{ID: s.port, Port: s.port}
	if s.metadata != nil {
		id.HWModel = deref(s.metadata.HWModel)
		id.FirmwareVersion = deref(s.metadata.FirmwareVersion)
	}
	return id
}

// Ready probes the device with `--device-metadata`. It succeeds once the
// firmware answers with its metadata.
func (s *Session) Ready(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	md, err := s.readMetadata(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.metadata = md
	s.mu.Unlock()
	return nil
}

// Snapshot returns the device configuration. Without forceRefresh a
// cached read is returned when there is one.
func (s *Session) Snapshot(ctx context.Context, forceRefresh bool) (*deviceconfig.Snapshot, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}

	s.mu.Lock()
	cached := s.cached
	md := s.metadata
	s.mu.Unlock()

	if cached != nil && !forceRefresh {
		return cached.Clone(), nil
	}

	if md == nil {
		var err error
		if md, err = s.readMetadata(ctx); err != nil {
			s.logger.Warn("metadata read failed; continuing without it", zap.Error(err))
		}
	}

	res := s.runner.Run(ctx, "export-config", []string{"--export-config"}, ExportTimeout)
	if err := res.Err("export-config", ExportTimeout); err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}

	snap, err := ParseExportConfig([]byte(res.Stdout))
	if err != nil {
		return nil, err
	}

	var meta deviceconfig.Metadata
	if md != nil {
		meta = *md
	}
	meta.Port = deviceconfig.Ptr(s.port)
	md = &meta
	snap.Metadata = md
	if snap.User != nil && md.HWModel != nil {
		snap.User.HWModel = md.HWModel
	}

	s.logger.Info("configuration read",
		zap.Int("channels", len(snap.Channels)),
		zap.Duration("duration", res.Duration),
	)

	s.mu.Lock()
	s.metadata = md
	s.cached = snap
	s.mu.Unlock()
	return snap.Clone(), nil
}

// Close releases the port. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	lock := s.lock
	s.lock = nil
	s.mu.Unlock()

	if lock == nil {
		return nil
	}
	s.logger.Debug("released port")
	return lock.Release()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock == nil
}

func (s *Session) readMetadata(ctx context.Context) (*deviceconfig.Metadata, error) {
	res := s.runner.Run(ctx, "device-metadata", []string{"--device-metadata"}, MetadataTimeout)
	if err := res.Err("device-metadata", MetadataTimeout); err != nil {
		return nil, err
	}
	md := ParseMetadata(res.Stdout)
	if md == nil {
		return nil, deviceconfig.NewParseError(
			"no metadata in tool output: "+firstLine(res.Stdout), nil)
	}
	return md, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
