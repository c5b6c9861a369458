package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	m "vbuild.dev/pkg/vbuild/internal/model"
)

// CompilationDBStore reads and writes JSON compilation databases.
type CompilationDBStore interface {
	LoadCompilationDB(ctx context.Context, path m.Path) (m.CompilationDB, error)
	SaveCompilationDB(ctx context.Context, path m.Path, db m.CompilationDB) error
	EncodeCompilationDB(w io.Writer, db m.CompilationDB) error
}

// JSONCompilationDBStore stores compilation databases as indented JSON
// arrays, the format clang tooling and bear agree on.
type JSONCompilationDBStore struct{}

// NewCompilationDBStore constructs a JSONCompilationDBStore.
func NewCompilationDBStore() *JSONCompilationDBStore {
	return &JSONCompilationDBStore{}
}

// LoadCompilationDB decodes the database at path, preserving record order.
func (s *JSONCompilationDBStore) LoadCompilationDB(_ context.Context, path m.Path) (m.CompilationDB, error) {
	// #nosec G304 - path is the fixed database location inside a project
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, err
	}

	var db m.CompilationDB
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("failed to decode compilation database %s: %w", path, err)
	}

	return db, nil
}

// SaveCompilationDB writes db to path, replacing any existing file.
func (s *JSONCompilationDBStore) SaveCompilationDB(_ context.Context, path m.Path, db m.CompilationDB) error {
	var buf bytes.Buffer
	if err := s.EncodeCompilationDB(&buf, db); err != nil {
		return err
	}

	return os.WriteFile(string(path), buf.Bytes(), 0o644) //nolint:gosec // consumed by external tools
}

// EncodeCompilationDB writes db to w as an indented JSON array ending in a
// newline. A nil db is written as an empty array.
func (s *JSONCompilationDBStore) EncodeCompilationDB(w io.Writer, db m.CompilationDB) error {
	if db == nil {
		db = m.CompilationDB{}
	}

	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode compilation database: %w", err)
	}

	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write compilation database: %w", err)
	}

	return nil
}
