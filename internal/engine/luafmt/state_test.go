package luafmt

import (
	"context"
	"errors"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"
)

func TestNewStateSafeLibraries(t *testing.T) {
	st := NewState()
	defer st.Close()

	// io, os, debug, and package must not be available.
	for _, lib := range []string{"io", "os", "debug", "package"} {
		if err := st.DoString("assert(" + lib + " == nil)"); err != nil {
			t.Errorf("library %q is available: %v", lib, err)
		}
	}

	// Safe libraries are open.
	for _, lib := range []string{"table", "string", "math"} {
		if err := st.DoString("assert(type(" + lib + ") == 'table')"); err != nil {
			t.Errorf("library %q missing: %v", lib, err)
		}
	}
}

func TestNewStateRemovedGlobals(t *testing.T) {
	st := NewState()
	defer st.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "print"} {
		if err := st.DoString("assert(" + name + " == nil)"); err != nil {
			t.Errorf("global %q is available: %v", name, err)
		}
	}
}

func TestStateDoString(t *testing.T) {
	st := NewState()
	defer st.Close()

	if err := st.DoString("x = 1 + 1"); err != nil {
		t.Errorf("DoString() error = %v", err)
	}

	if err := st.DoString("this is not lua"); err == nil {
		t.Error("DoString() with invalid code should fail")
	}
}

func TestStateCall(t *testing.T) {
	st := NewState()
	defer st.Close()

	if err := st.DoString("function double(n) return n * 2 end"); err != nil {
		t.Fatal(err)
	}

	results, err := st.Call(context.Background(), "double", lua.LNumber(21))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Call() returned %d values, want 1", len(results))
	}
	if n, ok := results[0].(lua.LNumber); !ok || float64(n) != 42 {
		t.Errorf("Call() = %v, want 42", results[0])
	}
}

func TestStateCallMissingFunction(t *testing.T) {
	st := NewState()
	defer st.Close()

	if _, err := st.Call(context.Background(), "nope"); err == nil {
		t.Error("Call() on missing function should fail")
	}
}

func TestStateCallError(t *testing.T) {
	st := NewState()
	defer st.Close()

	if err := st.DoString("function boom() error('bad input') end"); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Call(context.Background(), "boom"); err == nil {
		t.Error("Call() should surface lua errors")
	}
}

func TestStateCallTimeout(t *testing.T) {
	st := NewState(WithExecutionTimeout(50 * time.Millisecond))
	defer st.Close()

	if err := st.DoString("function spin() while true do end end"); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	_, err := st.Call(context.Background(), "spin")
	if err == nil {
		t.Fatal("Call() should time out")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Call() took %v, timeout did not engage", elapsed)
	}
}

func TestStateClose(t *testing.T) {
	st := NewState()

	if err := st.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !st.IsClosed() {
		t.Error("IsClosed() = false after Close()")
	}

	// Idempotent.
	if err := st.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if err := st.DoString("x = 1"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() after Close() error = %v, want ErrStateClosed", err)
	}
	if _, err := st.Call(context.Background(), "f"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Call() after Close() error = %v, want ErrStateClosed", err)
	}
}
