package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kutbudev/todoflow/internal/config"
	"github.com/zalando/go-keyring"
)

const (
	keyringService = "todoflow"
	keyringUser    = "api-key"
	fallbackFile   = ".credentials"
)

// ErrNoAPIKey is returned when no key has been stored.
var ErrNoAPIKey = errors.New("no API key stored; run `todoflow login`")

// Store keeps the API key in the OS keyring, or in a 0600 file under
// ~/.todoflow on headless systems where no keyring is available.
type Store struct {
	service      string
	user         string
	fallbackPath string

	mu       sync.Mutex
	checked  bool
	fallback bool
}

// NewStore returns a Store using the default keyring entry and fallback path.
func NewStore() (*Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return &Store{
		service:      keyringService,
		user:         keyringUser,
		fallbackPath: filepath.Join(dir, fallbackFile),
	}, nil
}

// keyringAvailable probes the keyring once.
func (s *Store) keyringAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checked {
		return !s.fallback
	}

	probe := s.user + "-probe"
	if err := keyring.Set(s.service, probe, "test"); err != nil {
		s.fallback = true
	} else {
		_ = keyring.Delete(s.service, probe)
	}
	s.checked = true
	return !s.fallback
}

// Save stores key, replacing any previous one.
func (s *Store) Save(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key is empty")
	}
	if s.keyringAvailable() {
		if err := keyring.Set(s.service, s.user, key); err != nil {
			return fmt.Errorf("failed to store key in keyring: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.fallbackPath), 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(s.fallbackPath, []byte(key), 0o600); err != nil {
		return fmt.Errorf("failed to write fallback key: %w", err)
	}
	return nil
}

// Load returns the stored key. TODOFLOW_API_KEY takes precedence.
func (s *Store) Load() (string, error) {
	if env := os.Getenv("TODOFLOW_API_KEY"); env != "" {
		return env, nil
	}

	if s.keyringAvailable() {
		key, err := keyring.Get(s.service, s.user)
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoAPIKey
		}
		if err != nil {
			return "", fmt.Errorf("failed to read key from keyring: %w", err)
		}
		return key, nil
	}

	data, err := os.ReadFile(s.fallbackPath)
	if os.IsNotExist(err) {
		return "", ErrNoAPIKey
	}
	if err != nil {
		return "", fmt.Errorf("failed to read fallback key: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Delete removes the key from the keyring and the fallback file.
func (s *Store) Delete() error {
	var keyringErr error
	if s.keyringAvailable() {
		keyringErr = keyring.Delete(s.service, s.user)
		if errors.Is(keyringErr, keyring.ErrNotFound) {
			keyringErr = nil
		}
	}

	fileErr := os.Remove(s.fallbackPath)
	if os.IsNotExist(fileErr) {
		fileErr = nil
	}
	return errors.Join(keyringErr, fileErr)
}

// Mode describes where keys are stored.
func (s *Store) Mode() string {
	if s.keyringAvailable() {
		return "system-keyring"
	}
	return "file-based (keyring unavailable)"
}
