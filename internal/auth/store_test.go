package auth

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseCredentials(t *testing.T) {
	input := strings.Join([]string{
		"alice:secret",
		"",
		"   ",
		"malformed line",
		"  bob:pa:ss:word  ",
		"carol:",
		"alice:rotated",
	}, "\n")

	users, err := ParseCredentials(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"alice": "rotated",
		"bob":   "pa:ss:word",
		"carol": "",
	}, users)
}

func TestFileCredentials_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.txt")
	require.NoError(t, os.WriteFile(path, []byte("admin:admin123\r\nguest:guest\n"), 0o600))

	c := NewFileCredentials(path, zap.NewNop())
	assert.Equal(t, map[string]string{"admin": "admin123", "guest": "guest"}, c.Load(context.Background()))

	// Changes are visible on the next load.
	require.NoError(t, os.WriteFile(path, []byte("admin:changed\n"), 0o600))
	assert.Equal(t, map[string]string{"admin": "changed"}, c.Load(context.Background()))
}

func TestFileCredentials_MissingFile(t *testing.T) {
	c := NewFileCredentials(filepath.Join(t.TempDir(), "absent.txt"), nil)

	users := c.Load(context.Background())
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestMemCredentials_LoadReturnsCopy(t *testing.T) {
	s := NewMemCredentials()
	s.Set("alice", "pw")

	users := s.Load(context.Background())
	users["alice"] = "tampered"

	assert.Equal(t, "pw", s.Load(context.Background())["alice"])
}
