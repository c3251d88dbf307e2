package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/rollcall/internal/roster"
	"github.com/example/rollcall/internal/wire"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the worker, project and assignment directories",
}

var rosterImportCmd = &cobra.Command{
	Use:   "import [file.yaml]",
	Short: "Import workers, projects and assignments from a YAML roster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open roster: %w", err)
		}
		defer f.Close()

		ros, err := roster.Parse(f)
		if err != nil {
			return err
		}

		res, err := roster.Import(cmd.Context(), wire.RosterWriter(), ros)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Imported %d project(s), %d worker(s), %d assignment window(s)\n",
			res.Projects, res.Workers, res.Assignments)
		return nil
	},
}

// RosterCmd returns the roster command
func RosterCmd() *cobra.Command {
	rosterCmd.AddCommand(rosterImportCmd)
	return rosterCmd
}
