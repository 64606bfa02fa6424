package main

import (
	"context"
	"fmt"
	"os"

	"github.com/duskforge/throwgen/internal/mcptools"
	"github.com/duskforge/throwgen/internal/store"
)

// runServe starts the MCP server backed by an in-memory KuzuDB store.
// The infer_throwables tool repopulates the store on every call.
func runServe(ctx context.Context, flags cliFlags) error {
	st, err := store.NewKuzuStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	svc := mcptools.NewThrowgenService(st)

	fmt.Fprintf(os.Stderr, "throwgen MCP server listening on %s\n", flags.Addr)
	return mcptools.RunMCPServer(ctx, svc, flags.Addr)
}
