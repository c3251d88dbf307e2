package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/rollcall/internal/adapters/cli"
	"github.com/example/rollcall/internal/ports/primary"
	"github.com/example/rollcall/internal/wire"
)

// resolveWorker picks the --worker flag, falling back to the configured default.
func resolveWorker(flag, fallback string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("no worker given: pass --worker or set default_worker in .rollcall/config.json")
}

// workerAdapter selects the worker for this invocation and returns the adapter.
func workerAdapter(cmd *cobra.Command) (*cliadapter.AttendanceAdapter, error) {
	flag, _ := cmd.Flags().GetString("worker")
	workerID, err := resolveWorker(flag, wire.Config().DefaultWorker)
	if err != nil {
		return nil, err
	}
	if _, err := wire.AttendanceService().SelectWorker(cmd.Context(), workerID); err != nil {
		return nil, fmt.Errorf("failed to select worker: %w", err)
	}
	return wire.AttendanceAdapter(), nil
}

func cellRequest(args []string) primary.CellRequest {
	return primary.CellRequest{Day: args[0], ProjectID: args[1]}
}

func monthFilter(cmd *cobra.Command) primary.MonthFilter {
	month, _ := cmd.Flags().GetString("month")
	project, _ := cmd.Flags().GetString("project")
	return primary.MonthFilter{Month: month, ProjectID: project}
}

func addWorkerFlag(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().StringP("worker", "w", "", "Worker ID (defaults to default_worker)")
	}
}

func addMonthFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().StringP("month", "m", "", "Month as YYYY-MM (defaults to the current month)")
		c.Flags().StringP("project", "p", "", "Limit to one project")
	}
}

var workerCmd = &cobra.Command{
	Use:   "worker [worker-id]",
	Short: "Load a worker and show what is on record",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flag := ""
		if len(args) == 1 {
			flag = args[0]
		}
		workerID, err := resolveWorker(flag, wire.Config().DefaultWorker)
		if err != nil {
			return err
		}
		_, err = wire.AttendanceAdapter().Select(cmd.Context(), workerID)
		return err
	},
}

var markCmd = &cobra.Command{
	Use:   "mark [day] [project-id] [full|half|absent|custom]",
	Short: "Mark a worker's attendance on a project for a day",
	Long: `Mark a worker's attendance on a project for a day.

States:
  full     present, 8 hours
  half     half day, 4 hours
  absent   absent, 0 hours
  custom   present with --hours (0 < h <= 24)`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, _ := cmd.Flags().GetFloat64("hours")

		adapter, err := workerAdapter(cmd)
		if err != nil {
			return err
		}
		_, err = adapter.Mark(cmd.Context(), primary.MarkRequest{
			Day:       args[0],
			ProjectID: args[1],
			State:     args[2],
			Hours:     hours,
		})
		return err
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle [day] [project-id]",
	Short: "Advance a cell one step: Present, Half Day, Absent, Present",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := workerAdapter(cmd)
		if err != nil {
			return err
		}
		_, err = adapter.Toggle(cmd.Context(), cellRequest(args))
		return err
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear [day] [project-id]",
	Short: "Remove the attendance record of a cell",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := workerAdapter(cmd)
		if err != nil {
			return err
		}
		return adapter.Clear(cmd.Context(), cellRequest(args))
	},
}

var cellCmd = &cobra.Command{
	Use:   "cell [day] [project-id]",
	Short: "Show one calendar cell",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := workerAdapter(cmd)
		if err != nil {
			return err
		}
		_, err = adapter.Cell(cmd.Context(), cellRequest(args))
		return err
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a worker's monthly attendance summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := workerAdapter(cmd)
		if err != nil {
			return err
		}
		_, err = adapter.Summary(cmd.Context(), monthFilter(cmd))
		return err
	},
}

var marksCmd = &cobra.Command{
	Use:   "marks",
	Short: "List a worker's attendance records for a month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := workerAdapter(cmd)
		if err != nil {
			return err
		}
		_, err = adapter.Marks(cmd.Context(), monthFilter(cmd))
		return err
	},
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List a worker's projects, most recently worked first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := workerAdapter(cmd)
		if err != nil {
			return err
		}
		_, err = adapter.Projects(cmd.Context())
		return err
	},
}

func init() {
	markCmd.Flags().Float64("hours", 0, "Hours worked (custom state only)")
	addWorkerFlag(markCmd, toggleCmd, clearCmd, cellCmd, summaryCmd, marksCmd, projectsCmd)
	addMonthFlags(summaryCmd, marksCmd)
}

// AttendanceCmds returns the attendance commands
func AttendanceCmds() []*cobra.Command {
	return []*cobra.Command{workerCmd, markCmd, toggleCmd, clearCmd, cellCmd, summaryCmd, marksCmd, projectsCmd}
}
