package provisioner

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const manifestName = "run.yaml"

// runManifest is the audit record written into each project folder once the
// chart generator has been invoked.
type runManifest struct {
	RunID     string            `yaml:"run_id"`
	CreatedAt time.Time         `yaml:"created_at"`
	Status    string            `yaml:"status"`
	Input     manifestInput     `yaml:"input"`
	Generator manifestGenerator `yaml:"generator"`
	Charts    manifestCharts    `yaml:"charts"`
}

type manifestInput struct {
	Name     string `yaml:"name"`
	Size     int64  `yaml:"size"`
	Checksum string `yaml:"checksum"`
}

type manifestGenerator struct {
	Command string `yaml:"command"`
}

type manifestCharts struct {
	Dir   string `yaml:"dir"`
	Count int    `yaml:"count"`
}

func writeManifest(dir string, m runManifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, manifestName), data, 0o644)
}
