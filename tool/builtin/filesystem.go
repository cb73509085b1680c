package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/svetzal/mojentic-go/llm"
	"github.com/svetzal/mojentic-go/pkg/mjerrors"
)

// ReadFileTool reads a file's contents from within a sandboxed root
// directory, grounded on the source crate's FilesystemGateway +
// ReadFileTool pair (examples/file_tool.rs). Unlike the source's
// gateway/tool split, this is a single stateless tool whose sandbox
// root is fixed at construction.
type ReadFileTool struct {
	root string
}

// NewReadFileTool sandboxes reads to root: any path argument is
// resolved relative to root, and attempts to escape it (via "..") are
// rejected as a tool error rather than silently clamped.
func NewReadFileTool(root string) *ReadFileTool {
	return &ReadFileTool{root: root}
}

func (t *ReadFileTool) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean(filepath.Join(t.root, relPath))
	rootAbs, err := filepath.Abs(t.root)
	if err != nil {
		return "", mjerrors.NewToolErrorWithCause("resolving sandbox root", err)
	}
	cleanedAbs, err := filepath.Abs(cleaned)
	if err != nil {
		return "", mjerrors.NewToolErrorWithCause("resolving path", err)
	}
	if cleanedAbs != rootAbs && !strings.HasPrefix(cleanedAbs, rootAbs+string(filepath.Separator)) {
		return "", mjerrors.NewToolError(fmt.Sprintf("path %q escapes sandbox root", relPath))
	}
	return cleanedAbs, nil
}

func (t *ReadFileTool) Run(ctx context.Context, arguments map[string]any) (any, error) {
	relPath, ok := arguments["path"].(string)
	if !ok || relPath == "" {
		return nil, mjerrors.NewToolError("read_file requires a non-empty \"path\" argument")
	}
	abs, err := t.resolve(relPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, mjerrors.NewToolErrorWithCause(fmt.Sprintf("reading %q", relPath), err)
	}
	return string(data), nil
}

func (t *ReadFileTool) Descriptor() llm.ToolDescriptor {
	return llm.ToolDescriptor{
		Name:        "read_file",
		Description: "Reads the contents of a file at the given path, relative to the sandboxed workspace root.",
		ParametersSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Path to the file, relative to the workspace root.",
				},
			},
			"required": []string{"path"},
		},
	}
}

func (t *ReadFileTool) Matches(name string) bool {
	return name == t.Descriptor().Name
}

// CloneIntoBox returns t itself: the sandbox root is immutable after
// construction, so the handle is safe to share.
func (t *ReadFileTool) CloneIntoBox() llm.Tool {
	return t
}
