package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	defaultDirPerm  os.FileMode = 0o755
	defaultFilePerm os.FileMode = 0o644
)

// ErrPathEscapesRoot is returned for relative paths that resolve outside the root.
var ErrPathEscapesRoot = errors.New("storage: path escapes root")

// Filesystem stores site artifacts below a root directory of an afero.Fs.
// Writes go to a temporary sibling first and are renamed into place, so
// readers observe either the previous or the new content.
type Filesystem struct {
	fs   afero.Fs
	root string
}

// NewFilesystem scopes fs to root. A nil fs means the host filesystem.
func NewFilesystem(fs afero.Fs, root string) *Filesystem {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Filesystem{fs: fs, root: filepath.Clean(root)}
}

// Root returns the directory all relative paths resolve against.
func (f *Filesystem) Root() string {
	return f.root
}

// Resolve maps a slash separated path relative to the root onto the
// underlying filesystem.
func (f *Filesystem) Resolve(rel string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(filepath.ToSlash(rel)))
	if clean == "/" {
		return "", fmt.Errorf("%w: %q", ErrPathEscapesRoot, rel)
	}
	resolved := filepath.Join(f.root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	prefix := strings.TrimSuffix(f.root, string(filepath.Separator)) + string(filepath.Separator)
	if !strings.HasPrefix(resolved, prefix) && f.root != "." {
		return "", fmt.Errorf("%w: %q", ErrPathEscapesRoot, rel)
	}
	return resolved, nil
}

// ReadFile returns the content stored at rel.
func (f *Filesystem) ReadFile(ctx context.Context, rel string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := f.Resolve(rel)
	if err != nil {
		return nil, err
	}
	return afero.ReadFile(f.fs, full)
}

// Exists reports whether rel is present.
func (f *Filesystem) Exists(ctx context.Context, rel string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	full, err := f.Resolve(rel)
	if err != nil {
		return false, err
	}
	return afero.Exists(f.fs, full)
}

// EnsureDir creates rel and its parents.
func (f *Filesystem) EnsureDir(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := f.Resolve(rel)
	if err != nil {
		return err
	}
	return f.fs.MkdirAll(full, defaultDirPerm)
}

// WriteFile atomically replaces rel with content.
func (f *Filesystem) WriteFile(ctx context.Context, rel string, content []byte) error {
	return f.WriteStream(ctx, rel, bytes.NewReader(content))
}

// WriteStream atomically replaces rel with everything read from src.
func (f *Filesystem) WriteStream(ctx context.Context, rel string, src io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if src == nil {
		return errors.New("storage: write requires content reader")
	}
	full, err := f.Resolve(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := f.fs.MkdirAll(dir, defaultDirPerm); err != nil {
		return fmt.Errorf("storage: ensure dir %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(f.fs, dir, "."+filepath.Base(full)+".*.tmp")
	if err != nil {
		return fmt.Errorf("storage: create temp for %s: %w", rel, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = f.fs.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: write %s: %w", rel, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: sync %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", rel, err)
	}
	if err := f.fs.Chmod(tmpName, defaultFilePerm); err != nil {
		return fmt.Errorf("storage: chmod %s: %w", rel, err)
	}
	if err := f.fs.Rename(tmpName, full); err != nil {
		return fmt.Errorf("storage: rename into %s: %w", rel, err)
	}
	committed = true
	return nil
}
