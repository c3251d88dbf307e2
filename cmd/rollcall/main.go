package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/rollcall/internal/cli"
	"github.com/example/rollcall/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "rollcall",
		Short:   "rollcall - assignment-aware attendance ledger",
		Version: version.String(),
		Long: `rollcall records daily attendance of workers on the projects they are assigned to.
A worker can be present on at most one project per day, and only inside an assignment window.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.RosterCmd())
	rootCmd.AddCommand(cli.AttendanceCmds()...)

	// Servers
	rootCmd.AddCommand(cli.ServeCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
