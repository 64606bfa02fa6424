package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewThrowgenMCPServer creates an MCP server with all 4 inference tools registered.
func NewThrowgenMCPServer(svc *ThrowgenService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "throwgen",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "infer_throwables",
		Description: "Scan a project for throw sites that reference undeclared exception types, infer their shape from how they are constructed, and generate synthetic declarations. Optionally writes the generated files.",
	}, svc.InferThrowables)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_declaration",
		Description: "Return one generated exception declaration by language and type name, including its source text, base class, and conflict flag.",
	}, svc.GetDeclaration)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_usages",
		Description: "List recorded throw sites from the last inference pass, optionally filtered by exception type name.",
	}, svc.QueryUsages)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_stats",
		Description: "Return counts of the stored inference graph: usage sites, generated specs, conflicts, and usage-to-spec links.",
	}, svc.GetStats)

	return server
}

// RunMCPServer starts an HTTP server exposing the throwgen MCP tools.
func RunMCPServer(ctx context.Context, svc *ThrowgenService, addr string) error {
	server := NewThrowgenMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
