package workspace

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/dshills/fmtbridge/internal/engine"
)

// Workspace associates a project root with its resolved engine. Records
// are immutable once created; only the registry entry can be removed.
type Workspace struct {
	// ID is the workspace identifier. Positive for registered
	// workspaces; 0 for the synthetic default record.
	ID uint32

	// Root is the project root directory. Empty for the default record.
	Root string

	// Engine is the resolved formatting engine. Shared between the
	// registry and in-flight format calls; engines are stateless, so
	// sharing is safe.
	Engine engine.Engine

	// Source records whether a project-local engine was resolved or the
	// default was used.
	Source engine.ResolutionSource
}

// Registry owns the workspace records for a process. It is a service
// object handed to callers rather than ambient package state.
type Registry struct {
	mu sync.RWMutex

	loader     *engine.Loader
	workspaces map[uint32]*Workspace
	nextID     uint32
}

// NewRegistry creates a registry resolving engines through loader.
func NewRegistry(loader *engine.Loader) *Registry {
	return &Registry{
		loader:     loader,
		workspaces: make(map[uint32]*Workspace),
	}
}

// Create registers a workspace for directory, resolving its engine, and
// returns the new id. Ids are positive and monotonically assigned for
// the registry's lifetime.
func (r *Registry) Create(ctx context.Context, directory string) (uint32, error) {
	if directory == "" {
		return 0, ErrEmptyDirectory
	}
	info, err := os.Stat(directory)
	if err != nil || !info.IsDir() {
		return 0, fmt.Errorf("%w: %s", ErrDirectoryNotFound, directory)
	}

	// Resolve outside the lock: engine loading touches the filesystem.
	res, err := r.loader.ForRoot(ctx, directory)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.workspaces[id] = &Workspace{
		ID:     id,
		Root:   directory,
		Engine: res.Engine,
		Source: res.Source,
	}
	return id, nil
}

// Delete removes the workspace record. Unknown ids are a no-op: the
// host may race deletion against its own teardown. Engines need no
// teardown; a shared default engine keeps serving other workspaces.
func (r *Registry) Delete(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, id)
}

// Resolve returns the workspace for id. Id 0 and unknown ids resolve to
// a synthetic default-engine record rather than an error. The only
// failure mode is the default engine itself failing to load.
func (r *Registry) Resolve(ctx context.Context, id uint32) (*Workspace, error) {
	if id > 0 {
		r.mu.RLock()
		ws, ok := r.workspaces[id]
		r.mu.RUnlock()
		if ok {
			return ws, nil
		}
	}

	def, err := r.loader.Default(ctx)
	if err != nil {
		return nil, err
	}
	return &Workspace{ID: 0, Root: "", Engine: def, Source: engine.SourceDefault}, nil
}

// Len returns the number of registered workspaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workspaces)
}

// IDs returns the registered workspace ids in ascending order.
func (r *Registry) IDs() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint32, 0, len(r.workspaces))
	for id := range r.workspaces {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
