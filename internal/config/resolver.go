package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/sjson"

	"github.com/dshills/fmtbridge/internal/engine"
)

// ConfigFileNames are the recognized config file names, in search order.
var ConfigFileNames = []string{
	".fmtbridgerc.json",
	".fmtbridgerc.jsonc",
	".fmtbridgerc.toml",
}

// Resolved holds the options and ignore patterns for a project root.
type Resolved struct {
	// Options is the opaque options document handed to the dispatcher.
	Options engine.Options

	// IgnorePatterns are the config's ignore patterns ("ignore" key),
	// extracted from the options document.
	IgnorePatterns []string

	// Path is the config file the options came from; empty when the
	// root has no config file.
	Path string
}

// Resolve finds and parses the config file for root. A missing config
// file yields empty options, not an error; a malformed one is an error
// the caller may warn about and degrade from.
func Resolve(root string) (*Resolved, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return ResolveFile(path)
	}
	return &Resolved{}, nil
}

// ResolveFile parses a specific config file.
func ResolveFile(path string) (*Resolved, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var doc string
	switch filepath.Ext(path) {
	case ".json":
		doc = string(data)
	case ".jsonc":
		doc = string(jsonc.ToJSON(data))
	case ".toml":
		doc, err = tomlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}

	if !gjson.Valid(doc) {
		return nil, fmt.Errorf("parse config %s: invalid JSON", path)
	}
	parsed := gjson.Parse(doc)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("parse config %s: not a JSON object", path)
	}

	var patterns []string
	for _, p := range parsed.Get("ignore").Array() {
		if s := p.String(); s != "" {
			patterns = append(patterns, s)
		}
	}

	// The ignore key is host configuration, not an engine option.
	if parsed.Get("ignore").Exists() {
		doc, err = sjson.Delete(doc, "ignore")
		if err != nil {
			return nil, fmt.Errorf("strip ignore from %s: %w", path, err)
		}
	}

	opts, err := engine.ParseOptions(doc)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return &Resolved{
		Options:        opts,
		IgnorePatterns: patterns,
		Path:           path,
	}, nil
}

// tomlToJSON converts a TOML document to JSON.
func tomlToJSON(data []byte) (string, error) {
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return "", err
	}
	out, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
