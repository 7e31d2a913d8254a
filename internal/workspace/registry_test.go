package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/fmtbridge/internal/engine"
)

const idScript = `
function format(code, options)
    return code
end
`

func testRegistry() *Registry {
	return NewRegistry(engine.NewLoader(engine.WithSearchPaths()))
}

func writeLocalEngine(t *testing.T, root string) {
	t.Helper()
	dir := filepath.Join(root, ".fmtbridge")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "engine.lua"), []byte(idScript), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCreateEmptyDirectory(t *testing.T) {
	r := testRegistry()

	_, err := r.Create(context.Background(), "")
	if !errors.Is(err, ErrEmptyDirectory) {
		t.Errorf("Create(\"\") error = %v, want ErrEmptyDirectory", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after failed create, want 0", r.Len())
	}
}

func TestCreateMissingDirectory(t *testing.T) {
	r := testRegistry()

	_, err := r.Create(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, ErrDirectoryNotFound) {
		t.Errorf("Create() error = %v, want ErrDirectoryNotFound", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after failed create, want 0", r.Len())
	}
}

func TestCreateMonotonicIDs(t *testing.T) {
	r := testRegistry()
	ctx := context.Background()

	first, err := r.Create(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := r.Create(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if first != 1 || second != 2 {
		t.Errorf("Create() ids = %d, %d, want 1, 2", first, second)
	}
}

func TestCreateFallsBackToDefault(t *testing.T) {
	r := testRegistry()
	ctx := context.Background()

	id, err := r.Create(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ws, err := r.Resolve(ctx, id)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ws.Source != engine.SourceDefault {
		t.Errorf("Source = %v, want SourceDefault", ws.Source)
	}

	def, err := r.Resolve(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ws.Engine != def.Engine {
		t.Error("workspace without local engine should share the default engine")
	}
}

func TestCreateLocalEngine(t *testing.T) {
	r := testRegistry()
	ctx := context.Background()
	root := t.TempDir()
	writeLocalEngine(t, root)

	id, err := r.Create(ctx, root)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ws, err := r.Resolve(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if ws.Source != engine.SourceLocal {
		t.Errorf("Source = %v, want SourceLocal", ws.Source)
	}
	if ws.Root != root {
		t.Errorf("Root = %q, want %q", ws.Root, root)
	}
}

func TestResolveUnknownIDs(t *testing.T) {
	r := testRegistry()
	ctx := context.Background()

	for _, id := range []uint32{0, 1, 999} {
		ws, err := r.Resolve(ctx, id)
		if err != nil {
			t.Fatalf("Resolve(%d) error = %v", id, err)
		}
		if ws.ID != 0 || ws.Root != "" {
			t.Errorf("Resolve(%d) = {ID: %d, Root: %q}, want default record", id, ws.ID, ws.Root)
		}
		if ws.Source != engine.SourceDefault {
			t.Errorf("Resolve(%d) Source = %v, want SourceDefault", id, ws.Source)
		}
	}

	// All unknown ids resolve to the same default engine.
	a, _ := r.Resolve(ctx, 0)
	b, _ := r.Resolve(ctx, 999)
	if a.Engine != b.Engine {
		t.Error("unknown ids resolved to distinct engines")
	}
}

func TestDelete(t *testing.T) {
	r := testRegistry()
	ctx := context.Background()
	root := t.TempDir()
	writeLocalEngine(t, root)

	id, err := r.Create(ctx, root)
	if err != nil {
		t.Fatal(err)
	}

	r.Delete(id)

	ws, err := r.Resolve(ctx, id)
	if err != nil {
		t.Fatalf("Resolve() after Delete() error = %v", err)
	}
	if ws.ID != 0 || ws.Source != engine.SourceDefault {
		t.Error("Resolve() after Delete() should return the default record")
	}

	// Double delete is a no-op.
	r.Delete(id)

	// Deleting never reuses ids.
	next, err := r.Create(ctx, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if next != id+1 {
		t.Errorf("Create() after Delete() id = %d, want %d", next, id+1)
	}
}

func TestIDs(t *testing.T) {
	r := testRegistry()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := r.Create(ctx, t.TempDir()); err != nil {
			t.Fatal(err)
		}
	}
	r.Delete(2)

	ids := r.IDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("IDs() = %v, want [1 3]", ids)
	}
}
