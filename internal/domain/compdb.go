package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	m "vbuild.dev/pkg/vbuild/internal/model"
)

// ExportCompilationDB re-runs the whole build under the interceptor and
// returns the recorded compilation database with directories and files
// relative to the project root. Only the validation variant exports.
func (p *Project) ExportCompilationDB(ctx context.Context) (m.CompilationDB, error) {
	if !p.profile.ExportsCompilationDB {
		return nil, fmt.Errorf("%w: %s does not export a compilation database", ErrUnsupportedVariant, p.Variant())
	}

	slog.Info("building json compilation database", "variant", p.Variant(), "interceptor", p.tools.Interceptor)

	if _, err := p.executor.BuildInEnv(ctx, p.cfg.Dir, p.tools.Interceptor+" "+p.cfg.BuildCmd, p.tools.BaseEnv); err != nil {
		return nil, err
	}

	path := p.deps.FS.JoinPath(ctx, string(p.cfg.Dir), m.CompilationDBFile)

	db, err := p.deps.CompDB.LoadCompilationDB(ctx, path)
	if err != nil {
		slog.Error("Failed to load compilation database", "path", path, "error", err)
		return nil, fmt.Errorf("failed to load compilation database: %w", err)
	}

	rel, err := relativizeCompilationDB(db, string(p.cfg.Dir))
	if err != nil {
		return nil, err
	}

	return rel, nil
}

// relativizeCompilationDB rewrites directory and file of every record
// relative to root. A relative file is first resolved against its record's
// directory, as the compilation database format defines it.
func relativizeCompilationDB(db m.CompilationDB, root string) (m.CompilationDB, error) {
	out := db.Clone()

	for i := range out {
		dir := out[i].Directory

		file := out[i].File
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}

		relDir, err := filepath.Rel(root, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to relativize directory %s: %w", dir, err)
		}

		relFile, err := filepath.Rel(root, file)
		if err != nil {
			return nil, fmt.Errorf("failed to relativize file %s: %w", file, err)
		}

		out[i].Directory = relDir
		out[i].File = relFile
	}

	return out, nil
}

// absolutizeCompilationDB anchors every record under root and appends flag
// once to each command form the record carries.
func absolutizeCompilationDB(db m.CompilationDB, root, flag string) m.CompilationDB {
	out := db.Clone()

	for i := range out {
		out[i].Directory = anchor(root, out[i].Directory)
		out[i].File = anchor(root, out[i].File)

		if out[i].Command != "" {
			out[i].Command += " " + flag
		}

		if len(out[i].Arguments) > 0 {
			out[i].Arguments = append(out[i].Arguments, flag)
		}
	}

	return out
}

func anchor(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(root, path)
}
