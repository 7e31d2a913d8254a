package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ManifestName is the project manifest file name looked up at a
// workspace root.
const ManifestName = "fmtbridge.json"

// conventionalEngine is accepted when no manifest is present.
const conventionalEngine = ".fmtbridge/engine.lua"

// Manifest describes a project's engine configuration.
type Manifest struct {
	// Engine is the engine script path, relative to the project root.
	Engine string `json:"engine"`

	// Languages optionally lists the parser names the engine supports.
	// Informational; the dispatcher does not enforce it.
	Languages []string `json:"languages"`

	// Internal: directory the manifest was loaded from.
	dir string
}

// LoadManifest loads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.dir = filepath.Dir(path)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifestFromDir loads the manifest from a project root directory.
func LoadManifestFromDir(dir string) (*Manifest, error) {
	return LoadManifest(filepath.Join(dir, ManifestName))
}

// Validate checks that the manifest names a usable engine script.
func (m *Manifest) Validate() error {
	if m.Engine == "" {
		return ErrMissingEngine
	}
	if filepath.IsAbs(m.Engine) {
		return fmt.Errorf("%w: %s is absolute", ErrInvalidEnginePath, m.Engine)
	}
	clean := filepath.Clean(m.Engine)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s escapes the project root", ErrInvalidEnginePath, m.Engine)
	}
	if filepath.Ext(clean) != ".lua" {
		return fmt.Errorf("%w: %s is not a .lua file", ErrInvalidEnginePath, m.Engine)
	}
	return nil
}

// EnginePath returns the absolute path of the engine script.
func (m *Manifest) EnginePath() string {
	return filepath.Join(m.dir, m.Engine)
}
