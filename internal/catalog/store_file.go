package catalog

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	filePerm   = 0o644
	jsonIndent = "    "
)

// FileStore keeps the catalog as an indented JSON array in a single file.
type FileStore struct {
	path string
	log  *zap.Logger
}

func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{path: path, log: log}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Init(ctx context.Context) error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "stat %s", s.path)
	}

	s.log.Info("creating empty catalog", zap.String("path", s.path))
	return s.Save(ctx, []Item{})
}

// Load never fails: a missing, unreadable or malformed file reads as an
// empty catalog.
func (s *FileStore) Load(_ context.Context) ([]Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("read catalog failed", zap.String("path", s.path), zap.Error(err))
		}
		return []Item{}, nil
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.Warn("catalog file is malformed, treating as empty", zap.String("path", s.path), zap.Error(err))
		return []Item{}, nil
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (s *FileStore) Save(_ context.Context, items []Item) error {
	if items == nil {
		items = []Item{}
	}

	data, err := json.MarshalIndent(items, "", jsonIndent)
	if err != nil {
		return errors.Wrap(err, "encode catalog")
	}
	data = append(data, '\n')

	if err := atomicWriteFile(s.path, data, filePerm); err != nil {
		return errors.Wrapf(err, "write %s", s.path)
	}
	return nil
}

func (s *FileStore) Ping(_ context.Context) error {
	dir := filepath.Dir(s.path)
	fi, err := os.Stat(dir)
	if err != nil {
		return errors.Wrap(err, "catalog directory")
	}
	if !fi.IsDir() {
		return errors.Errorf("catalog directory %s is not a directory", dir)
	}
	return nil
}

// atomicWriteFile writes to a temp file in the target directory and renames
// it over path, so readers see either the old or the new catalog.
func atomicWriteFile(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
