package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
)

// DiskStore writes files below a root directory, e.g. uploads/featured/<uuid>.png.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root}
}

func (s *DiskStore) Root() string {
	return s.root
}

// Path is where a stored file lives on disk.
func (s *DiskStore) Path(field, filename string) (string, error) {
	dir, err := Dir(field)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(dir), filepath.Base(filename)), nil
}

func (s *DiskStore) Save(ctx context.Context, field string, fh *multipart.FileHeader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	filename := NewFilename(fh.Filename)
	dst, err := s.Path(field, filename)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return filename, nil
}

func (s *DiskStore) Delete(ctx context.Context, field, filename string) error {
	path, err := s.Path(field, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", filename, err)
	}
	return nil
}
