package device

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// ErrPortBusy is returned when another meshcfg process holds the port.
var ErrPortBusy = errors.New("port is in use by another meshcfg process")

var unsafeLockChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Lock is an advisory per-port lock file. It marks this process as the
// owner of the transport while a session is open.
type Lock struct {
	path string
	mu   sync.Mutex
	file *os.File
}

// LockPath returns the lock file used for target under dir.
func LockPath(dir, target string) string {
	name := unsafeLockChars.ReplaceAllString(target, "_")
	return filepath.Join(dir, "meshcfg-"+name+".lock")
}

// AcquireLock takes the lock for target without blocking. dir defaults to
// the system temp directory.
func AcquireLock(dir, target string) (*Lock, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	path := LockPath(dir, target)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", target, err)
	}
	return &Lock{path: path, file: f}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. Releasing twice is a no-op.
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := unlockFile(l.file)
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	return err
}
