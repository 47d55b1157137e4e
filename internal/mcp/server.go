package mcpserver

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"agentload/internal/stats"
)

// Scanner produces a fresh scan result. *stats.Engine satisfies it.
type Scanner interface {
	Run(ctx context.Context) (*stats.Result, error)
}

// RunServer starts the MCP server over stdio transport.
func RunServer(ctx context.Context, scanner Scanner, version string) error {
	return newServer(scanner, version).Run(ctx, &mcpsdk.StdioTransport{})
}

func newServer(scanner Scanner, version string) *mcpsdk.Server {
	server := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "agentload",
			Version: version,
		},
		nil,
	)

	registerReportTools(server, &reportTools{scanner: scanner})

	return server
}
