package presets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/secretstore"
	"go.uber.org/zap"
)

const fileExt = ".yaml"

var (
	// ErrUnsafeName is returned for names that cannot be file names.
	ErrUnsafeName = errors.New("unsafe preset name")
	// ErrNotFound is returned when a preset does not exist.
	ErrNotFound = errors.New("preset not found")
	// ErrExists is returned when renaming onto an existing preset.
	ErrExists = errors.New("preset already exists")
)

// SecretStore is the part of secretstore.Store presets need.
type SecretStore interface {
	Save(label, secret string) (string, error)
	Fetch(tokenOrLabel string) (string, bool, error)
	Delete(tokenOrLabel string) error
}

// Manager stores presets as partial snapshot files in one directory.
type Manager struct {
	dir     string
	secrets SecretStore
	logger  *zap.Logger
}

// NewManager creates a manager for dir. secrets may be nil, in which case
// channel keys are written into preset files as they are.
func NewManager(dir string, secrets SecretStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{dir: dir, secrets: secrets, logger: logger}
}

// Dir returns the preset directory.
func (m *Manager) Dir() string {
	return m.dir
}

func (m *Manager) path(name string) (string, string, error) {
	clean := CleanName(name)
	if !IsSafeName(clean) {
		return "", "", fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	return clean, filepath.Join(m.dir, clean+fileExt), nil
}

// List returns preset names in sorted order. A missing directory yields
// an empty list.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// Save writes snap as preset name. Explicit channel keys are moved into
// the secret store and replaced by tokens in the file. It returns the
// cleaned name.
func (m *Manager) Save(name string, snap *deviceconfig.Snapshot) (string, error) {
	clean, path, err := m.path(name)
	if err != nil {
		return "", err
	}
	if snap == nil {
		return "", errors.New("nothing to save")
	}

	secured, err := m.secure(clean, snap)
	if err != nil {
		return "", err
	}
	data, err := secured.Marshal()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return "", fmt.Errorf("create preset directory: %w", err)
	}
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("save preset %s: %w", clean, err)
	}
	m.logger.Info("saved preset", zap.String("name", clean), zap.String("path", path))
	return clean, nil
}

func (m *Manager) secure(name string, snap *deviceconfig.Snapshot) (*deviceconfig.Snapshot, error) {
	out := snap.Clone()
	if m.secrets == nil {
		return out, nil
	}
	for i := range out.Channels {
		ch := &out.Channels[i]
		if ch.PSK == nil || !isExplicitKey(*ch.PSK) {
			continue
		}
		token, err := m.secrets.Save(SecretLabel(name, ch.Index), *ch.PSK)
		if err != nil {
			return nil, fmt.Errorf("store key for channel %d: %w", ch.Index, err)
		}
		ch.PSK = deviceconfig.Ptr(token)
	}
	return out, nil
}

func isExplicitKey(psk string) bool {
	return psk != "" && psk != deviceconfig.DefaultPSK && !secretstore.IsToken(psk)
}

// Load reads a preset as stored, with secret tokens left in place.
func (m *Manager) Load(name string) (*deviceconfig.Snapshot, error) {
	clean, path, err := m.path(name)
	if err != nil {
		return nil, err
	}
	snap, err := deviceconfig.LoadSnapshot(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// LoadResolved reads a preset and replaces secret tokens with their values.
func (m *Manager) LoadResolved(name string) (*deviceconfig.Snapshot, error) {
	snap, err := m.Load(name)
	if err != nil {
		return nil, err
	}
	ResolveSecrets(snap, m.secrets, m.logger)
	return snap, nil
}

// Delete removes a preset and the secrets it references.
func (m *Manager) Delete(name string) error {
	clean, path, err := m.path(name)
	if err != nil {
		return err
	}
	snap, err := deviceconfig.LoadSnapshot(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, clean)
	}
	if err != nil {
		m.logger.Warn("preset unreadable; deleting without secret cleanup", zap.String("name", clean), zap.Error(err))
	}

	if snap != nil && m.secrets != nil {
		for _, ch := range snap.Channels {
			if ch.PSK == nil || !secretstore.IsToken(*ch.PSK) {
				continue
			}
			if err := m.secrets.Delete(*ch.PSK); err != nil {
				m.logger.Warn("could not remove preset secret", zap.String("label", secretstore.Label(*ch.PSK)), zap.Error(err))
			}
		}
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete preset %s: %w", clean, err)
	}
	m.logger.Info("deleted preset", zap.String("name", clean))
	return nil
}

// Rename moves a preset to a new name. Its secrets move with it.
func (m *Manager) Rename(oldName, newName string) error {
	oldClean, oldPath, err := m.path(oldName)
	if err != nil {
		return err
	}
	newClean, newPath, err := m.path(newName)
	if err != nil {
		return err
	}
	if _, err := os.Stat(oldPath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, oldClean)
	}
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, newClean)
	}

	snap, err := m.LoadResolved(oldClean)
	if err != nil {
		return err
	}
	if _, err := m.Save(newClean, snap); err != nil {
		return err
	}
	if err := m.Delete(oldClean); err != nil {
		return err
	}
	m.logger.Info("renamed preset", zap.String("from", oldClean), zap.String("to", newClean))
	return nil
}

// ResolveSecrets replaces channel key tokens in snap with the stored keys.
// A token that cannot be resolved leaves the key absent, so the channel
// key is not touched on the device.
func ResolveSecrets(snap *deviceconfig.Snapshot, secrets SecretStore, logger *zap.Logger) {
	if snap == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	for i := range snap.Channels {
		ch := &snap.Channels[i]
		if ch.PSK == nil || !secretstore.IsToken(*ch.PSK) {
			continue
		}
		label := secretstore.Label(*ch.PSK)

		var (
			value string
			ok    bool
			err   error
		)
		if secrets != nil {
			value, ok, err = secrets.Fetch(*ch.PSK)
		}
		if err != nil || !ok {
			logger.Warn("channel key not found in secret store; leaving it unchanged",
				zap.Int("channel", ch.Index),
				zap.String("label", label),
				zap.Error(err),
			)
			ch.PSK = nil
			continue
		}
		ch.PSK = deviceconfig.Ptr(value)
	}
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
