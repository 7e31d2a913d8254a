package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/fmtbridge/internal/engine/luafmt"
)

// Loader resolves formatting engines.
//
// The default engine is loaded at most once per Loader and cached,
// including a load failure: two callers racing on first use observe the
// same instance (or the same error), never two distinct engines.
type Loader struct {
	// Explicit default engine script (overrides search paths)
	defaultScript string

	// Search paths for a user-installed default engine (checked in order)
	searchPaths []string

	// Runtime options applied to every loaded engine
	runtime []luafmt.StateOption

	defaultOnce sync.Once
	defaultEng  Engine
	defaultErr  error
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithDefaultScript sets an explicit default engine script path. A load
// failure of an explicit script is fatal; there is no fallback below the
// default engine.
func WithDefaultScript(path string) LoaderOption {
	return func(l *Loader) {
		l.defaultScript = path
	}
}

// WithSearchPaths sets the default engine search paths.
func WithSearchPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.searchPaths = paths
	}
}

// WithRuntimeOptions sets Lua runtime options for loaded engines.
func WithRuntimeOptions(opts ...luafmt.StateOption) LoaderOption {
	return func(l *Loader) {
		l.runtime = opts
	}
}

// NewLoader creates an engine loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		searchPaths: DefaultSearchPaths(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// DefaultSearchPaths returns the default engine script search paths.
func DefaultSearchPaths() []string {
	paths := make([]string, 0, 2)

	// User engine: ~/.config/fmtbridge/engine/init.lua
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "fmtbridge", "engine", "init.lua"))
	}

	// User data engine: ~/.local/share/fmtbridge/engine/init.lua
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".local", "share", "fmtbridge", "engine", "init.lua"))
	}

	return paths
}

// Default returns the process-default engine, loading it on first use.
// A failure here propagates to the caller: there is no further fallback.
func (l *Loader) Default(ctx context.Context) (Engine, error) {
	l.defaultOnce.Do(func() {
		l.defaultEng, l.defaultErr = l.loadDefault()
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.defaultEng, l.defaultErr
}

// loadDefault resolves the default engine script.
func (l *Loader) loadDefault() (Engine, error) {
	if l.defaultScript != "" {
		eng, err := luafmt.Load(l.defaultScript, l.runtime...)
		if err != nil {
			return nil, err
		}
		return luaEngine{eng}, nil
	}

	for _, path := range l.searchPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		// An installed but broken engine is surfaced, not skipped.
		eng, err := luafmt.Load(path, l.runtime...)
		if err != nil {
			return nil, err
		}
		return luaEngine{eng}, nil
	}

	eng, err := luafmt.Baseline(l.runtime...)
	if err != nil {
		return nil, err
	}
	return luaEngine{eng}, nil
}

// ForRoot resolves an engine for a project root. A project-local engine
// is discovered through the root's manifest or the conventional
// .fmtbridge/engine.lua; any resolution failure falls back to the
// default engine. The returned Resolution records which branch was
// taken. An error is returned only when the default engine itself
// cannot load.
func (l *Loader) ForRoot(ctx context.Context, root string) (Resolution, error) {
	if eng, err := l.resolveLocal(root); err == nil {
		return Resolution{Engine: eng, Source: SourceLocal}, nil
	}

	def, err := l.Default(ctx)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Engine: def, Source: SourceDefault}, nil
}

// resolveLocal attempts to load a project-local engine. No distinction
// is made between "not installed" and "broken": both report an error and
// the caller falls back.
func (l *Loader) resolveLocal(root string) (Engine, error) {
	if root == "" {
		return nil, ErrNoManifest
	}

	if m, err := LoadManifestFromDir(root); err == nil {
		eng, err := luafmt.Load(m.EnginePath(), l.runtime...)
		if err != nil {
			return nil, err
		}
		return luaEngine{eng}, nil
	}

	conventional := filepath.Join(root, filepath.FromSlash(conventionalEngine))
	if _, err := os.Stat(conventional); err == nil {
		eng, err := luafmt.Load(conventional, l.runtime...)
		if err != nil {
			return nil, err
		}
		return luaEngine{eng}, nil
	}

	return nil, ErrNoManifest
}

// luaEngine adapts a luafmt.Engine to the Engine interface.
type luaEngine struct {
	*luafmt.Engine
}

func (e luaEngine) Format(ctx context.Context, code string, opts Options) (string, error) {
	return e.Engine.Format(ctx, code, opts.JSON())
}
