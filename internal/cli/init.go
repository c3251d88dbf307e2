package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/rollcall/internal/config"
	"github.com/example/rollcall/internal/db"
	"github.com/example/rollcall/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize rollcall in the current directory",
		Long: `Write .rollcall/config.json and create or upgrade the attendance store.

With --seed the sqlite store is filled with a small demo roster.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, _ := cmd.Flags().GetString("driver")
			dsn, _ := cmd.Flags().GetString("dsn")
			worker, _ := cmd.Flags().GetString("worker")
			seed, _ := cmd.Flags().GetBool("seed")

			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			cfg := config.Default()
			cfg.Driver = driver
			cfg.DSN = dsn
			cfg.DefaultWorker = worker
			if cfg.Driver == config.DriverSQLite && cfg.DSN == "" {
				if cfg.DSN, err = db.DefaultPath(); err != nil {
					return fmt.Errorf("failed to get database path: %w", err)
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if seed && cfg.Driver != config.DriverSQLite {
				return fmt.Errorf("--seed is only available for sqlite; use 'rollcall roster import' instead")
			}

			if err := config.Save(wd, cfg); err != nil {
				return err
			}
			fmt.Println("✓ Config written to .rollcall/config.json")

			// First use of wire opens the store and applies the schema.
			loaded := wire.Config()
			fmt.Printf("✓ %s store ready (%s)\n", loaded.Driver, loaded.DSN)

			if seed {
				if err := db.SeedFixtures(wire.SQLiteDB()); err != nil {
					return fmt.Errorf("failed to seed database: %w", err)
				}
				fmt.Println("✓ Demo roster seeded (workers W-001, W-002)")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  rollcall roster import roster.yaml")
			fmt.Println("  rollcall mark 2025-01-15 P-001 full --worker W-001")

			return nil
		},
	}

	cmd.Flags().String("driver", config.DriverSQLite, "Storage driver (sqlite or postgres)")
	cmd.Flags().String("dsn", "", "sqlite path or postgres DSN")
	cmd.Flags().String("worker", "", "Default worker for attendance commands")
	cmd.Flags().Bool("seed", false, "Seed the sqlite store with demo data")

	return cmd
}
