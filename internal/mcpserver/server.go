// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the txtshelf file operations for LLM integration via stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/txtshelf/internal/api"
	"github.com/starford/txtshelf/internal/fileservice"
)

const (
	rulesURI           = "txtshelf://filename-rules"
	defaultSearchLimit = 20
)

// Server wraps the MCP server with txtshelf tools.
type Server struct {
	mcp *server.MCPServer
	svc *fileservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *fileservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"txtshelf",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_files",
		mcp.WithDescription("List all stored text files, one name per line."),
	), s.listFiles)

	s.mcp.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read the full content of a stored text file."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Full filename including .txt (e.g. notes.txt)")),
	), s.readFile)

	s.mcp.AddTool(mcp.NewTool("create_file",
		mcp.WithDescription("Create a new text file. Fails if the name is taken. "+
			"Read the naming rules first via get_filename_rules or the "+rulesURI+" resource."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Name without extension, letters, digits, '_' and '-' only")),
		mcp.WithString("content", mcp.Description("File content (may be empty)")),
	), s.createFile)

	s.mcp.AddTool(mcp.NewTool("rename_file",
		mcp.WithDescription("Rename a text file without changing its content. Fails if the new name is taken."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Current full filename including .txt")),
		mcp.WithString("new_filename", mcp.Required(), mcp.Description("New name without extension")),
	), s.renameFile)

	s.mcp.AddTool(mcp.NewTool("delete_file",
		mcp.WithDescription("Delete a text file."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Full filename including .txt")),
	), s.deleteFile)

	s.mcp.AddTool(mcp.NewTool("search_files",
		mcp.WithDescription("Full-text search through file names and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchFiles)

	s.mcp.AddTool(mcp.NewTool("get_filename_rules",
		mcp.WithDescription("Returns the txtshelf filename rules. "+
			"Call this before creating or renaming files."),
	), s.getFilenameRules)

	s.mcp.AddResource(
		mcp.NewResource(rulesURI, "Filename Rules",
			mcp.WithResourceDescription("Which filenames txtshelf accepts and how errors are reported."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFilenameRulesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// toolError turns a service error into a tool error carrying the same
// message an HTTP client would see.
func toolError(op string, err error) *mcp.CallToolResult {
	f := api.Describe(err)
	if f.Message == "internal error" {
		slog.Error("mcp: tool failed", slog.String("tool", op), slog.String("error", err.Error()))
	}
	return mcp.NewToolResultError(f.Message)
}

func (s *Server) listFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := s.svc.List(ctx)
	if err != nil {
		return toolError("list_files", err), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultText("no files"), nil
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) readFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f, err := s.svc.Get(ctx, name)
	if err != nil {
		return toolError("read_file", err), nil
	}
	return mcp.NewToolResultText(f.Content), nil
}

func (s *Server) createFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content := req.GetString("content", "")

	info, err := s.svc.Create(ctx, raw, []byte(content))
	if err != nil {
		return toolError("create_file", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", info.Name)), nil
}

func (s *Server) renameFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("new_filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := s.svc.Rename(ctx, name, raw)
	if err != nil {
		return toolError("rename_file", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("renamed: %s -> %s", name, info.Name)), nil
}

func (s *Server) deleteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, name); err != nil {
		return toolError("delete_file", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", name)), nil
}

func (s *Server) searchFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", defaultSearchLimit)

	results, err := s.svc.Search(ctx, query, limit)
	if err != nil {
		return toolError("search_files", err), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getFilenameRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FilenameRules), nil
}

func (s *Server) readFilenameRulesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      rulesURI,
			MIMEType: "text/markdown",
			Text:     FilenameRules,
		},
	}, nil
}
