package credential

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("TODOFLOW_API_KEY", "")
	return &Store{
		service:      "todoflow-test",
		user:         keyringUser,
		fallbackPath: filepath.Join(t.TempDir(), fallbackFile),
	}
}

func TestStoreKeyring(t *testing.T) {
	keyring.MockInit()
	s := newTestStore(t)

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNoAPIKey)

	require.NoError(t, s.Save("  tf_123  "))
	key, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "tf_123", key)
	assert.Equal(t, "system-keyring", s.Mode())

	require.NoError(t, s.Delete())
	_, err = s.Load()
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestStoreFallbackFile(t *testing.T) {
	keyring.MockInitWithError(errors.New("no dbus"))
	s := newTestStore(t)

	require.NoError(t, s.Save("tf_456"))
	assert.Equal(t, "file-based (keyring unavailable)", s.Mode())

	info, err := os.Stat(s.fallbackPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	key, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "tf_456", key)

	require.NoError(t, s.Delete())
	_, err = s.Load()
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestStoreEnvOverride(t *testing.T) {
	keyring.MockInit()
	s := newTestStore(t)
	t.Setenv("TODOFLOW_API_KEY", "from-env")

	key, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	keyring.MockInit()
	s := newTestStore(t)
	assert.Error(t, s.Save("   "))
}
