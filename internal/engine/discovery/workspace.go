package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"monodeps/internal/shared/util"

	"gopkg.in/yaml.v3"
)

type workspaceFile struct {
	Packages []string `yaml:"packages"`
}

// loadWorkspacePatterns turns the packages list of a pnpm-style workspace
// file into manifest globs. A missing file yields no patterns.
func loadWorkspacePatterns(root, name string) (include, exclude []string, err error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil, nil
	}
	data, err := os.ReadFile(filepath.Join(root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read workspace file %q: %w", name, err)
	}

	var ws workspaceFile
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, nil, fmt.Errorf("decode workspace file %q: %w", name, err)
	}

	for _, entry := range ws.Packages {
		entry = strings.TrimSpace(entry)
		negated := strings.HasPrefix(entry, "!")
		entry = util.NormalizePatternPath(strings.TrimPrefix(entry, "!"))
		if entry == "" {
			continue
		}
		pattern := entry + "/" + manifestName
		if negated {
			exclude = append(exclude, pattern)
		} else {
			include = append(include, pattern)
		}
	}
	return include, exclude, nil
}
