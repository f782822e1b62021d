package auth

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"
)

const maxCredentialLine = 64 * 1024

// CredentialSource yields the current username -> password mapping. It is
// consulted on every authentication attempt.
type CredentialSource interface {
	Load(ctx context.Context) map[string]string
}

// FileCredentials reads "username:password" lines from a text file.
type FileCredentials struct {
	Path string
	Log  *zap.Logger
}

func NewFileCredentials(path string, log *zap.Logger) *FileCredentials {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileCredentials{Path: path, Log: log}
}

// Load returns an empty mapping when the file is missing or unreadable.
func (c *FileCredentials) Load(_ context.Context) map[string]string {
	f, err := os.Open(c.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.Log.Warn("open credentials file failed", zap.String("path", c.Path), zap.Error(err))
		}
		return map[string]string{}
	}
	defer f.Close()

	users, err := ParseCredentials(f)
	if err != nil {
		c.Log.Warn("read credentials file failed", zap.String("path", c.Path), zap.Error(err))
	}
	return users
}

// ParseCredentials splits each trimmed, non-empty line at its first ':'.
// Lines without a separator are skipped and later usernames overwrite
// earlier ones. On a read error the entries parsed so far are returned.
func ParseCredentials(r io.Reader) (map[string]string, error) {
	users := make(map[string]string)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxCredentialLine)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		username, password, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		users[username] = password
	}

	return users, sc.Err()
}
