// Package adapter contains the OS and file-format boundaries of vbuild.
package adapter

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	m "vbuild.dev/pkg/vbuild/internal/model"
)

// SourceFSAdapter abstracts filesystem operations the domain layer relies on
// when managing a variant's working copy. It hides direct `os` access so the
// project logic can be exercised against temporary trees.
//
//nolint:interfacebloat // A richer interface keeps domain logic decoupled from os/fs.
type SourceFSAdapter interface {
	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// WriteFile writes content to a file with the given permissions.
	WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error

	// CopyFile copies src over dst, preserving the source file mode.
	CopyFile(ctx context.Context, src, dst m.Path) error

	// FileInfo returns metadata for a path.
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// Exists reports whether path exists. Errors other than "not exist"
	// are returned.
	Exists(ctx context.Context, path m.Path) (bool, error)

	// CreateTempDir creates a temporary directory.
	CreateTempDir(ctx context.Context, pattern string) (m.Path, error)

	// RemoveAll removes a path and all its contents.
	RemoveAll(ctx context.Context, path m.Path) error

	// Abs returns an absolute, cleaned representation of path.
	Abs(ctx context.Context, path m.Path) (m.Path, error)

	// RelPath returns the relative path from base to target.
	RelPath(ctx context.Context, base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(ctx context.Context, elem ...string) m.Path
}

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the domain.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(_ context.Context, path m.Path) ([]byte, error) {
	// #nosec G304 - path belongs to a project working copy
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(_ context.Context, path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// CopyFile copies a single file, truncating dst if it exists.
func (a *LocalSourceFSAdapter) CopyFile(_ context.Context, src, dst m.Path) error {
	// #nosec G304 - src is internal project file path, not user input
	sourceFile, err := os.Open(string(src))
	if err != nil {
		return err
	}

	defer func() { _ = sourceFile.Close() }()

	info, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	// #nosec G304 - dst is internal destination path, not user input
	destFile, err := os.OpenFile(string(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		_ = destFile.Close()
		return err
	}

	return destFile.Close()
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(_ context.Context, path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// Exists reports whether path exists.
func (a *LocalSourceFSAdapter) Exists(_ context.Context, path m.Path) (bool, error) {
	_, err := os.Stat(string(path))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// CreateTempDir creates a temporary directory under the system temp dir.
func (a *LocalSourceFSAdapter) CreateTempDir(_ context.Context, pattern string) (m.Path, error) {
	tmpDir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return "", err
	}

	return m.Path(tmpDir), nil
}

// RemoveAll removes a path and all its contents.
func (a *LocalSourceFSAdapter) RemoveAll(_ context.Context, path m.Path) error {
	return os.RemoveAll(string(path))
}

// Abs returns an absolute representation of path.
func (a *LocalSourceFSAdapter) Abs(_ context.Context, path m.Path) (m.Path, error) {
	abs, err := filepath.Abs(string(path))
	if err != nil {
		return "", err
	}

	return m.Path(abs), nil
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(_ context.Context, base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(_ context.Context, elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
