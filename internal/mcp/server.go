package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mfigueroa/docsage/internal/digest"
	"github.com/mfigueroa/docsage/internal/docstore"
	"github.com/mfigueroa/docsage/internal/engine"
	"github.com/mfigueroa/docsage/internal/feedback"
	"github.com/mfigueroa/docsage/internal/index"
)

// Server wraps the MCP server with dependencies.
type Server struct {
	server *mcp.Server
}

// Config holds server dependencies.
type Config struct {
	Engine    *engine.Engine
	Documents *docstore.Store
	Indexes   *index.Store
	Digests   *digest.Generator
	Feedback  *feedback.Store
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "docsage-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_document",
		Description: "Ask a question about an ingested PDF document. Retrieves the most relevant passages and returns a grounded, page-cited answer.",
	}, makeAskHandler(cfg.Engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List all registered documents with their identifiers and index status.",
	}, makeListHandler(cfg.Documents, cfg.Indexes))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "digest_document",
		Description: "Produce a summary digest of a document: key points, salient pages, and named entities.",
	}, makeDigestHandler(cfg.Documents, cfg.Digests))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_index_status",
		Description: "Get registry and embedding index counts for all documents.",
	}, makeStatusHandler(cfg.Documents, cfg.Indexes))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_feedback",
		Description: "Store relevance feedback for a document query to improve retrieval later.",
	}, makeFeedbackHandler(cfg.Feedback))

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
