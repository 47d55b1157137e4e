package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"agentload/internal/commands"
	"agentload/internal/output"
)

var rootCmd = &cobra.Command{
	Use:           "agentload",
	Short:         "See how much of your agent time is you vs sub-agents",
	Long:          "Scan local Claude session logs and compare hours spent in your own sessions with hours run by sub-agents",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := commands.LoadRuntime()
		if err != nil {
			return err
		}
		return commands.RunReport(cmd.Context(), rt, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	commands.BindFlags(rootCmd)

	rootCmd.AddCommand(commands.ViewCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.MCPCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		format, ferr := commands.Flags.OutputFormat()
		if ferr != nil {
			format = output.FormatText
		}
		output.PrintError(format, err)
		stop()
		os.Exit(1)
	}
}
