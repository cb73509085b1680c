package tool_test

import (
	"testing"

	"github.com/svetzal/mojentic-go/tool"
	"github.com/svetzal/mojentic-go/tool/builtin"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := tool.NewRegistry()
	dt := builtin.NewCurrentDateTimeTool()
	r.Register(dt)

	got, ok := r.Get(dt.Descriptor().Name)
	if !ok {
		t.Fatalf("Get(%q) not found after Register", dt.Descriptor().Name)
	}
	if got.Descriptor().Name != dt.Descriptor().Name {
		t.Fatalf("Get returned %q, want %q", got.Descriptor().Name, dt.Descriptor().Name)
	}
}

func TestRegistry_GetMissingReturnsFalse(t *testing.T) {
	r := tool.NewRegistry()
	if _, ok := r.Get("nonexistent"); ok {
		t.Fatal("Get on an empty registry returned ok=true")
	}
}

func TestRegistry_RegisterOverwritesSameName(t *testing.T) {
	r := tool.NewRegistry()
	dt := builtin.NewCurrentDateTimeTool()
	r.Register(dt)
	r.Register(dt)

	if len(r.All()) != 1 {
		t.Fatalf("All() = %d tools after re-registering the same name, want 1", len(r.All()))
	}
}

func TestRegistry_AllReturnsEveryRegisteredTool(t *testing.T) {
	r := tool.NewRegistry()
	r.Register(builtin.NewCurrentDateTimeTool())
	r.Register(builtin.NewReadFileTool(t.TempDir()))

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("All() = %d tools, want 2", len(all))
	}

	names := map[string]bool{}
	for _, tl := range all {
		names[tl.Descriptor().Name] = true
	}
	for _, name := range []string{"current_datetime", "read_file"} {
		if !names[name] {
			t.Fatalf("All() missing tool %q: got %v", name, names)
		}
	}
}
