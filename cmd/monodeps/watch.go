package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	coreapp "monodeps/internal/core/app"
)

type watchOptions struct {
	ui          bool
	metricsAddr string
}

func newWatchCmd(g *globalOptions) *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the analysis whenever manifests or sources change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.ui {
				// keep logs out of the TUI
				closeLog, err := setupLogging(g.verbose, true, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer closeLog()
			}

			app, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer app.Close()
			defer startTracing(cmd, app)()

			addr := app.Config.Observability.MetricsAddress
			if cmd.Flags().Changed("metrics-addr") {
				addr = opts.metricsAddr
			}
			if addr != "" {
				srv := newMetricsServer(addr, coreapp.NewHealthService(app))
				if err := srv.Start(); err != nil {
					return err
				}
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = srv.Stop(ctx)
				}()
			}

			if opts.ui {
				return runWatchUI(cmd.Context(), app)
			}
			return runWatchPlain(cmd, app)
		},
	}

	cmd.Flags().BoolVar(&opts.ui, "ui", false, "show a terminal UI")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics and /health on this address")
	return cmd
}

// runWatchPlain writes the report once and again after every successful
// re-run.
func runWatchPlain(cmd *cobra.Command, app *coreapp.App) error {
	report, err := app.Analyze(cmd.Context())
	if err != nil {
		return err
	}
	req := app.OutputRequestFromConfig()
	if _, err := app.WriteReport(report, req, cmd.OutOrStdout()); err != nil {
		return err
	}

	app.SetUpdateHandler(func(u coreapp.Update) {
		if u.Err != nil {
			return
		}
		if _, err := app.WriteReport(u.Report, req, cmd.OutOrStdout()); err != nil {
			slog.Error("failed to write report", "error", err)
		}
	})
	return app.Watch(cmd.Context())
}

func runWatchUI(ctx context.Context, app *coreapp.App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(initialModel(app.Paths.Root), tea.WithAltScreen(), tea.WithContext(ctx))
	app.SetUpdateHandler(func(u coreapp.Update) {
		p.Send(newUpdateMsg(u))
	})

	watchErr := make(chan error, 1)
	go func() {
		report, err := app.Analyze(ctx)
		u := coreapp.Update{Report: report, Err: err, At: time.Now()}
		if err == nil {
			u.Summary = report.Summary()
		}
		p.Send(newUpdateMsg(u))
		watchErr <- app.Watch(ctx)
	}()

	_, err := p.Run()
	cancel()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if werr := <-watchErr; werr != nil {
		return werr
	}
	return nil
}
