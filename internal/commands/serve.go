package commands

import (
	"context"

	"agentload/internal/httpserver"
	mcpserver "agentload/internal/mcp"
)

// RunServe runs the HTTP server until ctx is cancelled.
func RunServe(ctx context.Context, rt *Runtime) error {
	cfg := rt.Config
	srv := httpserver.NewHTTPServer(cfg.Engine(rt.Logger), rt.Logger, httpserver.Options{
		Version:   Version,
		Schedule:  cfg.RescanSchedule(),
		Watch:     cfg.Server.Watch,
		WatchRoot: cfg.Scan.ProjectsDir,
		Debounce:  cfg.Debounce(),
	})

	rt.Logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("root", cfg.Scan.ProjectsDir).
		Bool("watch", cfg.Server.Watch).
		Msg("Serving report")

	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// RunMCP serves MCP tools over stdio. Logs stay on stderr so stdout only
// carries JSON-RPC.
func RunMCP(ctx context.Context, rt *Runtime) error {
	return mcpserver.RunServer(ctx, rt.Config.Engine(rt.Logger), Version)
}
