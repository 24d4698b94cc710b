package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-PoolScheduleService/internal/app"
	"github.com/m04kA/SMC-PoolScheduleService/internal/config"
	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/internal/infra/migrator"
	generateSlotsUC "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/generate_slots"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "poolctl",
		Short:        "Operational tasks for the pool schedule service",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "config.toml", "Path to the TOML config file")

	rootCmd.AddCommand(generateSlotsCmd())
	rootCmd.AddCommand(markNoShowCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New("", cfg.Logs.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// withApp builds the full dependency graph and tears it down after fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func generateSlotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate-slots",
		Short: "Regenerate slots for a facility over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			facilityID, _ := cmd.Flags().GetInt64("facility")
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")

			start, err := domain.ParseDate(from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			end, err := domain.ParseDate(to)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				resp, err := a.GenerateSlots.Execute(ctx, &generateSlotsUC.Request{
					FacilityID: facilityID,
					StartDate:  start,
					EndDate:    end,
					ActorID:    domain.SystemActor.ID,
				})
				if err != nil {
					return err
				}

				fmt.Printf("Created %d slot(s), deleted %d slot(s).\n", resp.CreatedCount, resp.DeletedCount)
				for _, p := range resp.PreservedBooked {
					fmt.Printf("Kept booked slot %s %s\n", p.Date.Format(domain.DateFormat), p.Time)
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64("facility", 0, "Facility ID")
	cmd.Flags().String("from", "", "First date, YYYY-MM-DD")
	cmd.Flags().String("to", "", "Last date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("facility")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func markNoShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mark-no-show",
		Short: "Flag unconfirmed appointments of a day as no-shows",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				var (
					marked int
					err    error
				)
				if date == "" {
					marked, err = a.Sweeper.RunNow(ctx)
				} else {
					day, parseErr := domain.ParseDate(date)
					if parseErr != nil {
						return fmt.Errorf("invalid --date: %w", parseErr)
					}
					marked, err = a.Appointments.MarkNoShow(ctx, day, domain.SystemActor.ID)
				}
				if err != nil {
					return err
				}

				fmt.Printf("Marked %d appointment(s) as no-show.\n", marked)
				return nil
			})
		},
	}
	cmd.Flags().String("date", "", "Day to sweep, YYYY-MM-DD (default: yesterday in the sweeper timezone)")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withMigrator := func(cmd *cobra.Command, fn func(m *migrator.Migrator) error) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}

		m, err := migrator.New(db)
		if err != nil {
			return err
		}
		defer m.Close()

		return fn(m)
	}

	printVersion := func(m *migrator.Migrator) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("Schema version %d (dirty=%t)\n", version, dirty)
		return nil
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *migrator.Migrator) error {
				if err := m.Up(); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				return printVersion(m)
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return withMigrator(cmd, func(m *migrator.Migrator) error {
				if err := m.Down(steps); err != nil {
					return fmt.Errorf("rollback failed: %w", err)
				}
				return printVersion(m)
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")

	forceCmd := &cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return withMigrator(cmd, func(m *migrator.Migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				return printVersion(m)
			})
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, printVersion)
		},
	}

	cmd.AddCommand(upCmd, downCmd, forceCmd, versionCmd)
	return cmd
}
