package commands

import (
	"github.com/spf13/cobra"
)

// ViewCmd represents the view command
var ViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Interactive report",
	Long:  "Scan session logs and show the report in an interactive terminal view (r rescans, q quits)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := LoadRuntime()
		if err != nil {
			return err
		}
		return RunView(cmd.Context(), rt, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// ServeCmd represents the serve command
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report over HTTP",
	Long:  "Start an HTTP server exposing the latest report, a WebSocket stream of new reports and Prometheus metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := LoadRuntime()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			rt.Config.Server.Addr = addr
		}
		return RunServe(cmd.Context(), rt)
	},
}

// MCPCmd represents the mcp command
var MCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long:  "Expose the report as Model Context Protocol tools over stdin/stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := LoadRuntime()
		if err != nil {
			return err
		}
		return RunMCP(cmd.Context(), rt)
	},
}

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := Flags.OutputFormat()
		if err != nil {
			return err
		}
		return RunVersion(cmd.OutOrStdout(), format)
	},
}

func init() {
	ServeCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
