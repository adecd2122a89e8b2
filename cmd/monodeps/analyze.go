package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	coreapp "monodeps/internal/core/app"
	"monodeps/internal/engine/analysis"
	"monodeps/internal/engine/layers"
)

type analyzeOptions struct {
	layer    string
	minScore int
	record   bool
}

func newAnalyzeCmd(g *globalOptions) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the dependency graph and report anomalies",
		Long:  "Analyze discovers packages, builds the graph and reports anomalies. It exits 1 when a critical or high anomaly remains after filters.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.filter()
			if err != nil {
				return err
			}

			app, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer app.Close()
			defer startTracing(cmd, app)()

			report, err := app.Analyze(cmd.Context())
			if err != nil {
				return err
			}

			if opts.record || app.Config.History.Enabled {
				if _, err := app.Record(report); err != nil {
					// a failed snapshot never hides the report
					slog.Error("failed to record snapshot", "error", err)
				}
			}

			req := app.OutputRequestFromConfig()
			req.Filter = filter
			view, err := app.WriteReport(report, req, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if code := coreapp.ExitCode(view); code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.layer, "layer", "", "only report anomalies touching a package of this layer")
	cmd.Flags().IntVar(&opts.minScore, "min-score", 0, "only report anomalies with at least this score")
	cmd.Flags().BoolVar(&opts.record, "record", false, "store a history snapshot of this run")
	return cmd
}

func (o *analyzeOptions) filter() (analysis.Filter, error) {
	f := analysis.Filter{MinScore: o.minScore}
	if o.layer != "" {
		l, err := layers.Parse(o.layer)
		if err != nil {
			return f, err
		}
		f.Layer = l
	}
	return f, nil
}

func newOrderCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "order",
		Short: "Print the build order as parallel layers",
		Long:  "Order prints packages grouped into layers that can be built in parallel, dependencies first. It exits 1 when a cycle blocks a complete ordering.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer app.Close()
			defer startTracing(cmd, app)()

			report, err := app.Analyze(cmd.Context())
			if err != nil {
				return err
			}

			req := app.OutputRequestFromConfig()
			req.OrderOnly = true
			if _, err := app.WriteReport(report, req, cmd.OutOrStdout()); err != nil {
				return err
			}
			if code := coreapp.OrderExitCode(report); code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}
}
