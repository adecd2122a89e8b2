package app

import (
	"errors"
	"fmt"
	"strings"

	domainErrors "monodeps/internal/core/errors"
	"monodeps/internal/engine/analysis"
	"monodeps/internal/engine/graph"
)

// ResolveName accepts a full package name or one without the configured
// namespace prefix.
func (a *App) ResolveName(report *analysis.Report, name string) (string, error) {
	name = strings.TrimSpace(name)
	if report.Graph.Has(name) {
		return name, nil
	}
	if ns := a.Config.Discovery.Namespace; ns != "" && !strings.HasPrefix(name, ns) {
		if scoped := ns + name; report.Graph.Has(scoped) {
			return scoped, nil
		}
	}
	return "", domainErrors.AddContext(
		domainErrors.New(domainErrors.CodeNotFound, "unknown package"),
		domainErrors.CtxPackage, name)
}

// Trace returns the shortest dependency chain from -> ... -> to.
func (a *App) Trace(report *analysis.Report, from, to string) ([]string, error) {
	src, err := a.ResolveName(report, from)
	if err != nil {
		return nil, err
	}
	dst, err := a.ResolveName(report, to)
	if err != nil {
		return nil, err
	}
	chain, ok := report.Graph.FindDependencyChain(src, dst)
	if !ok {
		return nil, domainErrors.New(domainErrors.CodeNotFound, fmt.Sprintf("%s does not depend on %s", src, dst))
	}
	return chain, nil
}

func (a *App) Impact(report *analysis.Report, name string) (graph.ImpactReport, error) {
	target, err := a.ResolveName(report, name)
	if err != nil {
		return graph.ImpactReport{}, err
	}
	impact, err := report.Graph.AnalyzeImpact(target)
	if errors.Is(err, graph.ErrPackageNotFound) {
		return graph.ImpactReport{}, domainErrors.Wrap(err, domainErrors.CodeNotFound, "impact analysis")
	}
	return impact, err
}
