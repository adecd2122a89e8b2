package discovery

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"monodeps/internal/shared/util"
)

type Size struct {
	FileCount   int
	LinesOfCode int
}

// sourceStats walks dir counting files with a matching extension and
// summing their line counts. Unreadable entries are skipped; a missing
// directory yields a zero Size.
func sourceStats(ctx context.Context, dir string, extensions map[string]bool, excludeDirs []glob.Glob) (Size, error) {
	var size Size
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return size, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != dir && matchesAny(excludeDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		size.FileCount++
		size.LinesOfCode += util.CountLines(data)
		return nil
	})
	if err != nil {
		return Size{}, err
	}
	return size, nil
}

func hasReadme(dir string, names map[string]bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Type().IsRegular() && names[strings.ToLower(e.Name())] {
			return true
		}
	}
	return false
}

func matchesAny(globs []glob.Glob, value string) bool {
	for _, g := range globs {
		if g.Match(value) {
			return true
		}
	}
	return false
}
