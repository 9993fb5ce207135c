package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/txtshelf/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	dataDir, svc, _ := testutil.TestService(t)
	return New(svc, "test"), dataDir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handlers are
	// invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_files":
		result, err = srv.listFiles(ctx, req)
	case "read_file":
		result, err = srv.readFile(ctx, req)
	case "create_file":
		result, err = srv.createFile(ctx, req)
	case "rename_file":
		result, err = srv.renameFile(ctx, req)
	case "delete_file":
		result, err = srv.deleteFile(ctx, req)
	case "search_files":
		result, err = srv.searchFiles(ctx, req)
	case "get_filename_rules":
		result, err = srv.getFilenameRules(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadFile(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_file", map[string]interface{}{
		"filename": "test",
		"content":  "Hello\nWorld",
	})
	if text := resultText(r); text != "created: test.txt" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_file", map[string]interface{}{"filename": "test.txt"})
	if text := resultText(r); text != "Hello\nWorld" {
		t.Errorf("read result = %q", text)
	}
}

func TestCreateFile_Rejected(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_file", map[string]interface{}{"filename": "bad.txt"})
	if !r.IsError || resultText(r) != "only alphanumeric, underscore, and hyphen are allowed" {
		t.Errorf("invalid name result = %v %q", r.IsError, resultText(r))
	}

	_ = callTool(t, srv, "create_file", map[string]interface{}{"filename": "dup"})
	r = callTool(t, srv, "create_file", map[string]interface{}{"filename": "dup"})
	if !r.IsError || resultText(r) != "a file with the same name already exists" {
		t.Errorf("duplicate result = %v %q", r.IsError, resultText(r))
	}

	r = callTool(t, srv, "create_file", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing filename argument")
	}
}

func TestListFiles(t *testing.T) {
	srv, dataDir := testServer(t)

	r := callTool(t, srv, "list_files", map[string]interface{}{})
	if text := resultText(r); text != "no files" {
		t.Errorf("empty list = %q", text)
	}

	testutil.WriteFile(t, dataDir, "b.txt", "b")
	testutil.WriteFile(t, dataDir, "a.txt", "a")
	testutil.WriteFile(t, dataDir, "skip.md", "s")

	r = callTool(t, srv, "list_files", map[string]interface{}{})
	if text := resultText(r); text != "a.txt\nb.txt" {
		t.Errorf("list = %q", text)
	}
}

func TestReadFileMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_file", map[string]interface{}{"filename": "nope.txt"})
	if !r.IsError || resultText(r) != "file not found" {
		t.Errorf("missing file result = %v %q", r.IsError, resultText(r))
	}

	r = callTool(t, srv, "read_file", map[string]interface{}{"filename": "../../etc/passwd"})
	if !r.IsError {
		t.Error("expected error for traversal name")
	}
}

func TestRenameAndDeleteFile(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "create_file", map[string]interface{}{"filename": "old", "content": "body"})

	r := callTool(t, srv, "rename_file", map[string]interface{}{"filename": "old.txt", "new_filename": "new"})
	if text := resultText(r); text != "renamed: old.txt -> new.txt" {
		t.Errorf("rename result = %q", text)
	}

	r = callTool(t, srv, "read_file", map[string]interface{}{"filename": "new.txt"})
	if resultText(r) != "body" {
		t.Errorf("content after rename = %q", resultText(r))
	}

	r = callTool(t, srv, "delete_file", map[string]interface{}{"filename": "new.txt"})
	if text := resultText(r); text != "deleted: new.txt" {
		t.Errorf("delete result = %q", text)
	}
	r = callTool(t, srv, "delete_file", map[string]interface{}{"filename": "new.txt"})
	if !r.IsError {
		t.Error("expected error deleting twice")
	}
}

func TestSearchFiles(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "create_file", map[string]interface{}{"filename": "recipes", "content": "Pancakes\nflour eggs milk"})

	r := callTool(t, srv, "search_files", map[string]interface{}{"query": "flour", "limit": 5})
	if text := resultText(r); !strings.Contains(text, `"name": "recipes.txt"`) {
		t.Errorf("search result = %q", text)
	}
}

func TestGetFilenameRules(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_filename_rules", nil)
	if !strings.Contains(resultText(r), "txtshelf Filename Rules") {
		t.Error("rules text missing")
	}
}

func TestFilenameRulesResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readFilenameRulesResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != rulesURI || tc.Text != FilenameRules {
		t.Errorf("resource = %+v", contents[0])
	}
}
