package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/clinical"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/notification"
	"github.com/clinic/clinic/internal/platform/reporting"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "clinic-server",
		Short:        "Clinic patients, appointments and reminders",
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("seed", false, "Load demo patients and appointments at startup")

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(remindCmd())
	root.AddCommand(attendanceCmd())
	return root
}

// buildApp loads config and wires every component. CLI commands log to
// stderr so their stdout stays readable.
func buildApp(ctx context.Context, cmd *cobra.Command, logOut io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	a, err := newApp(ctx, cfg, newLogger(cfg, logOut))
	if err != nil {
		return nil, err
	}
	if seed, _ := cmd.Flags().GetBool("seed"); seed {
		if err := seedDemo(ctx, a, time.Now().In(a.loc)); err != nil {
			a.close()
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}
	return a, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd)
		},
	}
}

func runServer(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cmd, os.Stdout)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger

	e := a.server()
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + a.cfg.Port
		logger.Info().Str("addr", addr).Str("storage", a.cfg.Storage).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	openMigrator := func(cmd *cobra.Command) (*db.Migrator, func(), error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required")
		}
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.MigrationsDir
		}
		pool, err := db.NewPool(cmd.Context(), db.PoolOptions{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
		if err != nil {
			return nil, nil, err
		}
		return db.NewMigrator(pool, dir), pool.Close, nil
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, done, err := openMigrator(cmd)
			if err != nil {
				return err
			}
			defer done()
			count, err := m.Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, done, err := openMigrator(cmd)
			if err != nil {
				return err
			}
			defer done()
			statuses, err := m.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status, appliedAt := "pending", ""
				if s.Applied {
					status = "applied"
					appliedAt = s.AppliedAt.Format(time.DateTime)
				}
				fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func remindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send reminders for tomorrow's appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			channel, _ := cmd.Flags().GetString("channel")
			at, _ := cmd.Flags().GetString("at")

			a, err := buildApp(cmd.Context(), cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			ref, err := reporting.ReferenceTime(at, a.loc, time.Now)
			if err != nil {
				return fmt.Errorf("--at must be RFC 3339 or YYYY-MM-DD: %w", err)
			}
			r, err := a.engine.NextDay(cmd.Context(), ref, channel)
			if err != nil {
				return err
			}
			if !r.Valid {
				return fmt.Errorf("unknown channel %q (use EMAIL or PHONE)", channel)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Reminders for %s via %s: %d\n", r.TargetDate, r.Channel, len(r.Entries))
			for _, o := range a.dispatcher.Dispatch(cmd.Context(), r.Channel, notification.TargetsFromReport(r)) {
				switch {
				case o.Status == notification.StatusFailed:
					fmt.Fprintf(out, "FAILED  %-30s %s\n", o.PatientName, o.Reason)
				case o.TransportError != "":
					fmt.Fprintf(out, "ERROR   %-30s %s\n", o.Destination, o.TransportError)
				default:
					fmt.Fprintf(out, "SENT    %-30s %s\n", o.Destination, o.Message)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("channel", "EMAIL", "Contact channel: EMAIL or PHONE")
	cmd.Flags().String("at", "", "Reference date (default now)")
	return cmd
}

func attendanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "List the distinct patients a doctor saw in a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			doctorID, _ := cmd.Flags().GetInt("doctor")
			month, _ := cmd.Flags().GetInt("month")
			year, _ := cmd.Flags().GetInt("year")
			if month < 1 || month > 12 {
				return fmt.Errorf("--month must be 1-12")
			}

			a, err := buildApp(cmd.Context(), cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			d, ok := a.roster.FindDoctor(doctorID)
			if !ok {
				return fmt.Errorf("doctor %d not found", doctorID)
			}
			appts, err := a.book.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			seen, err := clinical.DistinctPatientsSeenInMonth(cmd.Context(), a.patients, doctorID, time.Month(month), year, appts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s, %s %d: %d patient(s)\n", d, time.Month(month), year, len(seen))
			for _, p := range seen {
				fmt.Fprintf(out, "%-6d %s\n", p.ID, p.Name)
			}
			return nil
		},
	}
	now := time.Now()
	cmd.Flags().Int("doctor", 1, "Doctor id")
	cmd.Flags().Int("month", int(now.Month()), "Month (1-12)")
	cmd.Flags().Int("year", now.Year(), "Year")
	return cmd
}
