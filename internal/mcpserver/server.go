// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes memo tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/memos/internal/memoservice"
	"github.com/starford/memos/internal/models"
)

// MemoFormatURI is the resource URI of the memo format contract.
const MemoFormatURI = "memos://memo-format"

// Server wraps the MCP server with memo tools.
type Server struct {
	mcp *server.MCPServer
	svc *memoservice.Service
}

// New creates a new MCP server with all memo tools registered.
func New(svc *memoservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Memos",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("add_memo",
		mcp.WithDescription("Append a memo to today's journal file. "+
			"Tags are written as #tag tokens before the content. "+
			"Read the format via get_memo_format or the "+MemoFormatURI+" resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Memo text, a single line")),
		mcp.WithArray("tags", mcp.WithStringItems(), mcp.Description("Tags without the leading #")),
		mcp.WithString("group", mcp.Description("Quick-tag group keyword or label to file the memo under")),
		mcp.WithBoolean("auto_tag", mcp.Description("Add tags from the smart and habit keyword tables")),
	), s.addMemo)

	s.mcp.AddTool(mcp.NewTool("list_memos",
		mcp.WithDescription("List memos newest first, optionally filtered by tag or quick-tag group."),
		mcp.WithString("tag", mcp.Description("Only memos with this tag")),
		mcp.WithString("group", mcp.Description("Only memos with any tag of this quick-tag group")),
		mcp.WithNumber("limit", mcp.Description("Page size")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listMemos)

	s.mcp.AddTool(mcp.NewTool("search_memos",
		mcp.WithDescription("Case-insensitive search through memo text and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Max results")),
	), s.searchMemos)

	s.mcp.AddTool(mcp.NewTool("memo_stats",
		mcp.WithDescription("Counts of all memos, distinct tags, today's memos and the last seven days."),
	), s.memoStats)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("All distinct memo tags, sorted, plus the configured quick-tag groups."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("get_memo_format",
		mcp.WithDescription("Returns the journal memo line format. "+
			"Call this before adding memos to ensure correct structure."),
	), s.getMemoFormat)

	// Resource: memo format contract.
	s.mcp.AddResource(
		mcp.NewResource(MemoFormatURI, "Memo Format",
			mcp.WithResourceDescription("How memos are stored in daily journal files."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMemoFormatResource,
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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) addMemo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.ContainsAny(content, "\r\n") {
		return mcp.NewToolResultError("content must be a single line"), nil
	}
	memo, err := s.svc.Create(ctx, memoservice.CreateInput{
		Content: content,
		Tags:    req.GetStringSlice("tags", nil),
		Group:   req.GetString("group", ""),
		AutoTag: req.GetBool("auto_tag", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added to %s: %s", memo.FilePath, memo.RawText)), nil
}

func (s *Server) listMemos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.svc.List(ctx, memoservice.Filter{
		Tag:    req.GetString("tag", ""),
		Group:  req.GetString("group", ""),
		Limit:  req.GetInt("limit", 0),
		Offset: req.GetInt("offset", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"memos": summarize(page.Items),
		"total": page.Total,
	}), nil
}

func (s *Server) searchMemos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.List(ctx, memoservice.Filter{Query: query, Limit: req.GetInt("limit", 20)})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if page.Total == 0 {
		return mcp.NewToolResultText("no memos found"), nil
	}
	return jsonResult(summarize(page.Items)), nil
}

func (s *Server) memoStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st), nil
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.Tags(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"tags":       tags,
		"quick_tags": s.svc.QuickTags(),
	}), nil
}

func (s *Server) getMemoFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MemoFormatContract), nil
}

func (s *Server) readMemoFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      MemoFormatURI,
			MIMEType: "text/markdown",
			Text:     MemoFormatContract,
		},
	}, nil
}

// memoSummary is the compact memo shape returned to LLM clients.
type memoSummary struct {
	Date    string   `json:"date"`
	Time    string   `json:"time,omitempty"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
	File    string   `json:"file"`
}

func summarize(memos []models.Memo) []memoSummary {
	out := make([]memoSummary, len(memos))
	for i, m := range memos {
		out[i] = memoSummary{
			Date:    m.DateString,
			Time:    m.TimeString,
			Tags:    m.Tags,
			Content: m.Content,
			File:    m.FilePath,
		}
	}
	return out
}
