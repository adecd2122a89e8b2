package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"monodeps/internal/engine/graph"
)

func newTraceCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trace <from> <to>",
		Short: "Show the shortest dependency chain between two packages",
		Long:  "Trace prints the shortest from -> ... -> to dependency path. Names may omit the configured namespace.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Analyze(cmd.Context())
			if err != nil {
				return err
			}
			chain, err := app.Trace(report, args[0], args[1])
			if err != nil {
				return err
			}
			if app.Config.Output.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"chain": chain})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(chain, " -> "))
			return err
		},
	}
}

func newImpactCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "impact <package>",
		Short: "List packages affected by a change to a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Analyze(cmd.Context())
			if err != nil {
				return err
			}
			impact, err := app.Impact(report, args[0])
			if err != nil {
				return err
			}
			if app.Config.Output.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), impact)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), formatImpactReport(impact))
			return err
		},
	}
}

func formatImpactReport(report graph.ImpactReport) string {
	var b strings.Builder

	b.WriteString("Impact Analysis\n")
	b.WriteString("===============\n")
	fmt.Fprintf(&b, "Target package: %s (%s)\n\n", report.Target, report.Layer)

	section := func(title string, names []string) {
		fmt.Fprintf(&b, "%s (%d)\n", title, len(names))
		for _, name := range names {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("\n")
	}
	section("Direct dependents", report.DirectDependents)
	section("Transitive dependents", report.TransitiveDependents)
	section("Direct dependencies", report.DirectDependencies)
	section("Transitive dependencies", report.TransitiveDependencies)
	return b.String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
