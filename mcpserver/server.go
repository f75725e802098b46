package mcpserver

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"screensmith/shared"
)

// Server exposes read-only file access over MCP stdio, restricted to an
// allow-list of roots. This is the side-channel capability an agent process
// gets instead of having large reference documents inlined into its prompt.
// Write and execute are never exposed.
type Server struct {
	roots []string
	mcp   *server.MCPServer
}

func NewServer(roots []string) (*Server, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("at least one accessible root required")
	}
	abs := make([]string, 0, len(roots))
	for _, root := range roots {
		a, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve root %q: %w", root, err)
		}
		abs = append(abs, a)
	}

	s := &Server{
		roots: abs,
		mcp:   server.NewMCPServer("screensmith-reference", "1.0.0", server.WithToolCapabilities(true)),
	}

	for _, reg := range []func() (toolDef, server.ToolHandlerFunc){s.readFileTool, s.listDirTool} {
		def, handler := reg()
		tool, err := shared.ConvertToMcpTool(def.FunctionDefinition)
		if err != nil {
			return nil, fmt.Errorf("register tool %s: %w", def.Name, err)
		}
		s.mcp.AddTool(tool, handler)
	}
	return s, nil
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcp)
}

// resolveAllowed rejects any path that escapes the allowed roots, including
// .. traversal smuggled through a relative path.
func (s *Server) resolveAllowed(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	for _, root := range s.roots {
		if abs == root || strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("path %q is outside the accessible roots", path)
}
