package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/svetzal/mojentic-go/pkg/mjerrors"
)

func TestReadFileTool_ReadsWithinSandbox(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi there"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tool := NewReadFileTool(dir)
	result, err := tool.Run(context.Background(), map[string]any{"path": "hello.txt"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result != "hi there" {
		t.Errorf("Run() = %q, want %q", result, "hi there")
	}
}

func TestReadFileTool_RejectsSandboxEscape(t *testing.T) {
	dir := t.TempDir()
	tool := NewReadFileTool(dir)

	_, err := tool.Run(context.Background(), map[string]any{"path": "../../etc/passwd"})
	if err == nil {
		t.Fatal("expected an error for a path escaping the sandbox root")
	}
	if !mjerrors.IsTool(err) {
		t.Errorf("expected a tool error, got %v", err)
	}
}

func TestReadFileTool_MissingPathArgument(t *testing.T) {
	tool := NewReadFileTool(t.TempDir())
	_, err := tool.Run(context.Background(), map[string]any{})
	if !mjerrors.IsTool(err) {
		t.Errorf("expected a tool error for missing path argument, got %v", err)
	}
}
