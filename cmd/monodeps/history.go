package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	domainErrors "monodeps/internal/core/errors"
	"monodeps/internal/data/history"
	"monodeps/internal/shared/util"
)

type historyOptions struct {
	since string
	limit int
}

func newHistoryCmd(g *globalOptions) *cobra.Command {
	opts := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded snapshots and the latest trend delta",
		Long:  "History lists snapshots stored by analyze --record and compares the two most recent ones by anomaly type.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			since, err := parseSince(opts.since)
			if err != nil {
				return err
			}

			app, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer app.Close()

			snapshots, err := app.History(since, opts.limit)
			if err != nil {
				return err
			}

			var delta *history.TrendDelta
			if len(snapshots) >= 2 {
				d, err := history.LatestDelta(snapshots)
				if err != nil {
					return err
				}
				delta = &d
			}

			if app.Config.Output.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), struct {
					Snapshots []history.Snapshot  `json:"snapshots"`
					Trend     *history.TrendDelta `json:"trend,omitempty"`
				}{snapshots, delta})
			}
			return writeHistoryText(cmd.OutOrStdout(), snapshots, delta)
		},
	}

	cmd.Flags().StringVar(&opts.since, "since", "", "only snapshots at/after this time (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "maximum number of snapshots to show")
	return cmd
}

func parseSince(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, domainErrors.New(domainErrors.CodeValidationError,
		fmt.Sprintf("invalid --since %q (want RFC3339 or YYYY-MM-DD)", raw))
}

func writeHistoryText(w io.Writer, snapshots []history.Snapshot, delta *history.TrendDelta) error {
	if len(snapshots) == 0 {
		_, err := fmt.Fprintln(w, "No snapshots recorded. Run 'monodeps analyze --record' first.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tRUN\tPACKAGES\tEDGES\tCYCLES\tANOMALIES\tMAX DEPTH")
	for _, s := range snapshots {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			s.Timestamp.Format(time.RFC3339), shortID(s.RunID),
			s.PackageCount, s.EdgeCount, s.CycleCount, s.AnomalyCount, s.MaxDepth)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if delta == nil {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\nTrend %s -> %s\n", shortID(delta.From.RunID), shortID(delta.To.RunID))
	fmt.Fprintf(&b, "  packages %+d, edges %+d, cycles %+d, anomalies %+d, max depth %+d, avg instability %+.2f\n",
		delta.DeltaPackages, delta.DeltaEdges, delta.DeltaCycles, delta.DeltaAnomalies, delta.DeltaMaxDepth, delta.DeltaInstability)
	for _, kind := range util.SortedStringKeys(delta.DeltaByKind) {
		fmt.Fprintf(&b, "  %s %+d\n", kind, delta.DeltaByKind[kind])
	}
	for _, id := range delta.NewAnomalies {
		fmt.Fprintf(&b, "  + %s\n", id)
	}
	for _, id := range delta.ResolvedAnomalies {
		fmt.Fprintf(&b, "  - %s\n", id)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
