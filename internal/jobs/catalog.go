package jobs

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a requested job does not exist in the catalog.
var ErrNotFound = errors.New("job not found")

// Job describes a position available for interview.
type Job struct {
	ID           string   `yaml:"id" json:"id"`
	Title        string   `yaml:"title" json:"title"`
	Department   string   `yaml:"department" json:"department"`
	Location     string   `yaml:"location" json:"location"`
	Description  string   `yaml:"description" json:"description"`
	Requirements []string `yaml:"requirements" json:"requirements"`
}

//go:embed jobs.yaml
var defaultCatalog []byte

// Catalog holds the set of jobs candidates can interview for.
// It is immutable after Load and safe for concurrent reads.
type Catalog struct {
	jobs []Job
	byID map[string]Job
}

// Load reads a job catalog from the YAML file at path. An empty path
// loads the embedded default catalog, so the daemon runs out of the box.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading job catalog %s: %w", path, err)
		}
		data = b
	}

	var parsed struct {
		Jobs []Job `yaml:"jobs"`
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing job catalog: %w", err)
	}
	if len(parsed.Jobs) == 0 {
		return nil, errors.New("job catalog is empty")
	}

	byID := make(map[string]Job, len(parsed.Jobs))
	for i, j := range parsed.Jobs {
		if j.ID == "" {
			return nil, fmt.Errorf("job at index %d has no id", i)
		}
		if j.Title == "" {
			return nil, fmt.Errorf("job %s has no title", j.ID)
		}
		if _, dup := byID[j.ID]; dup {
			return nil, fmt.Errorf("duplicate job id %s", j.ID)
		}
		byID[j.ID] = j
	}

	return &Catalog{jobs: parsed.Jobs, byID: byID}, nil
}

// Find returns the job with the given id, or ErrNotFound.
func (c *Catalog) Find(id string) (Job, error) {
	j, ok := c.byID[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return j, nil
}

// All returns every job in catalog order.
func (c *Catalog) All() []Job {
	out := make([]Job, len(c.jobs))
	copy(out, c.jobs)
	return out
}
