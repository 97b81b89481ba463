package blueprint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/taskgraph"
)

// File is a blueprint document as stored on disk.
type File struct {
	Name  string              `yaml:"name"`
	Tasks []taskgraph.RawTask `yaml:"tasks"`
}

// LoadFile reads a blueprint from a YAML file. An unnamed blueprint takes
// its name from the file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading blueprint: %w", err)
	}

	var bp File
	if err := yaml.Unmarshal(data, &bp); err != nil {
		return nil, fmt.Errorf("parsing blueprint %s: %w", path, err)
	}
	if len(bp.Tasks) == 0 {
		return nil, fmt.Errorf("blueprint %s has no tasks", path)
	}
	if bp.Name == "" {
		bp.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return &bp, nil
}
