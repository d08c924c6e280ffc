package secretstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"filippo.io/age"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// TokenPrefix marks a value as a reference into the store.
const TokenPrefix = "secret://"

const (
	identityFile = "secrets.key"
	storeFile    = "secrets.age"
)

// ErrEmptySecret is returned when saving a blank secret.
var ErrEmptySecret = errors.New("secret is empty")

// IsToken reports whether v is a secret token.
func IsToken(v string) bool {
	return strings.HasPrefix(v, TokenPrefix)
}

// Token returns the token for label.
func Token(label string) string {
	return TokenPrefix + label
}

// Label returns the label of a token, or v unchanged when it is a plain label.
func Label(v string) string {
	return strings.TrimPrefix(v, TokenPrefix)
}

// Store keeps secrets in a single age-encrypted YAML file next to the
// X25519 identity that decrypts it. The identity is created on first use
// with owner-only permissions.
type Store struct {
	dir      string
	logger   *zap.Logger
	mu       sync.Mutex
	identity *age.X25519Identity
}

// Open opens the store in dir, creating the identity if needed.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create secret directory: %w", err)
	}

	identity, err := loadOrCreateIdentity(filepath.Join(dir, identityFile))
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, logger: logger, identity: identity}, nil
}

func loadOrCreateIdentity(path string) (*age.X25519Identity, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		identity, err := age.ParseX25519Identity(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("parse identity %s: %w", path, err)
		}
		return identity, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read identity: %w", err)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generate identity: %w", err)
	}
	if err := writeAtomic(path, []byte(identity.String()+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write identity: %w", err)
	}
	return identity, nil
}

// Save stores secret under label and returns its token.
func (s *Store) Save(label, secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	label = Label(label)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", err
	}
	entries[label] = secret
	if err := s.store(entries); err != nil {
		return "", err
	}
	s.logger.Debug("secret saved", zap.String("label", label))
	return Token(label), nil
}

// Fetch returns the secret for a token or label. The second result is
// false when nothing is stored under it.
func (s *Store) Fetch(tokenOrLabel string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := entries[Label(tokenOrLabel)]
	return v, ok, nil
}

// Delete removes a secret. Deleting an absent label is not an error.
func (s *Store) Delete(tokenOrLabel string) error {
	label := Label(tokenOrLabel)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := entries[label]; !ok {
		return nil
	}
	delete(entries, label)
	if err := s.store(entries); err != nil {
		return err
	}
	s.logger.Debug("secret deleted", zap.String("label", label))
	return nil
}

// Labels returns all stored labels.
func (s *Store) Labels() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for k := range entries {
		out = append(out, k)
	}
	return out, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, storeFile)
}

func (s *Store) load() (map[string]string, error) {
	entries := make(map[string]string)

	ciphertext, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read secret store: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), s.identity)
	if err != nil {
		return nil, fmt.Errorf("decrypt secret store: %w", err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read decrypted secret store: %w", err)
	}
	if err := yaml.Unmarshal(plaintext, &entries); err != nil {
		return nil, fmt.Errorf("parse secret store: %w", err)
	}
	return entries, nil
}

func (s *Store) store(entries map[string]string) error {
	plaintext, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode secret store: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, s.identity.Recipient())
	if err != nil {
		return fmt.Errorf("create encryptor: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return fmt.Errorf("encrypt secret store: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize secret store: %w", err)
	}
	return writeAtomic(s.path(), buf.Bytes(), 0o600)
}

// writeAtomic writes via a temp file in the same directory and renames it
// over path.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
