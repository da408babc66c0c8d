package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mike-a-ellis/course-rag/internal/tools"
)

// Catalog lists what the vector store currently holds.
type Catalog interface {
	ExistingCourseTitles(ctx context.Context) ([]string, error)
}

// Server wraps the MCP server with its dependencies.
type Server struct {
	server *mcp.Server
}

// Config holds server dependencies.
type Config struct {
	SearchTool  tools.Tool
	OutlineTool tools.Tool
	Catalog     Catalog
}

// NewServer creates a configured MCP server with the course tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "course-rag-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
	}, makeSearchHandler(cfg.SearchTool))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_course_outline",
		Description: "Get the complete outline of a course: title, link, instructor, and all lessons with their numbers and titles",
	}, makeOutlineHandler(cfg.OutlineTool))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_courses",
		Description: "List the titles of all courses in the catalog",
	}, makeListHandler(cfg.Catalog))

	return &Server{server: server}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
