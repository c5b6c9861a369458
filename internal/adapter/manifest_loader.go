package adapter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "vbuild.dev/pkg/vbuild/internal/model"
)

// ManifestLoader reads run manifests.
type ManifestLoader interface {
	LoadManifest(ctx context.Context, path m.Path) (m.Manifest, error)
}

// YAMLManifestLoader decodes YAML manifests. Relative variant directories are
// resolved against the directory containing the manifest.
type YAMLManifestLoader struct{}

// NewManifestLoader constructs a YAMLManifestLoader.
func NewManifestLoader() *YAMLManifestLoader {
	return &YAMLManifestLoader{}
}

// LoadManifest reads, decodes and validates the manifest at path.
func (l *YAMLManifestLoader) LoadManifest(_ context.Context, path m.Path) (m.Manifest, error) {
	// #nosec G304 - manifest path is supplied by the operator
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest m.Manifest

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&manifest); err != nil {
		return m.Manifest{}, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}

	base, err := filepath.Abs(filepath.Dir(string(path)))
	if err != nil {
		return m.Manifest{}, err
	}

	for v, dir := range manifest.Variants {
		if dir != "" && !filepath.IsAbs(string(dir)) {
			manifest.Variants[v] = m.Path(filepath.Join(base, string(dir)))
		}
	}

	if err := manifest.Validate(); err != nil {
		return m.Manifest{}, err
	}

	return manifest, nil
}
