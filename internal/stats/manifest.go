package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ManifestFileName is written next to the run output.
const ManifestFileName = "manifest.json"

// Manifest describes one run of a pipeline command.
type Manifest struct {
	RunID      string         `json:"run_id"`
	Command    string         `json:"command"`
	Input      string         `json:"input"`
	Output     string         `json:"output"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Config     any            `json:"config,omitempty"`
	Counters   Counters       `json:"counters"`
	Openings   map[string]int `json:"openings,omitempty"`
}

// NewManifest starts a manifest with a fresh run id.
func NewManifest(command, input, output string, config any) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Command:   command,
		Input:     input,
		Output:    output,
		StartedAt: time.Now().UTC(),
		Config:    config,
	}
}

// Finish stamps the end time and copies the counters.
func (m *Manifest) Finish(c *Collector) {
	m.FinishedAt = time.Now().UTC()
	m.Counters = c.Snapshot()
}

// JSON returns the indented manifest document.
func (m *Manifest) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Save writes the manifest to dir/manifest.json.
func (m *Manifest) Save(dir string) error {
	data, err := m.JSON()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Write to temp file then rename for atomicity
	path := filepath.Join(dir, ManifestFileName)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}

// LoadManifest reads dir/manifest.json.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
