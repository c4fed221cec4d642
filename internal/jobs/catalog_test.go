package jobs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	all := c.All()
	if len(all) == 0 {
		t.Fatal("embedded catalog is empty")
	}

	job, err := c.Find("job_1")
	if err != nil {
		t.Fatalf("Find(job_1) failed: %v", err)
	}
	if job.Title == "" || job.Department == "" {
		t.Errorf("job_1 missing fields: %+v", job)
	}
	if len(job.Requirements) == 0 {
		t.Error("job_1 has no requirements")
	}
}

func TestFindUnknownJob(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	_, err = c.Find("no_such_job")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(no_such_job) = %v, want ErrNotFound", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	content := `jobs:
  - id: custom_1
    title: Site Reliability Engineer
    department: Infrastructure
    location: Remote
    description: Keep the lights on.
    requirements:
      - On-call experience
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%s) failed: %v", path, err)
	}

	job, err := c.Find("custom_1")
	if err != nil {
		t.Fatalf("Find(custom_1) failed: %v", err)
	}
	if job.Title != "Site Reliability Engineer" {
		t.Errorf("Title = %q", job.Title)
	}

	// Embedded jobs must not leak into a file-backed catalog.
	if _, err := c.Find("job_1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(job_1) = %v, want ErrNotFound", err)
	}
}

func TestLoadRejectsInvalidCatalogs(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty", "jobs: []"},
		{"missing id", "jobs:\n  - title: X\n"},
		{"missing title", "jobs:\n  - id: a\n"},
		{"duplicate id", "jobs:\n  - id: a\n    title: X\n  - id: a\n    title: Y\n"},
		{"bad yaml", "jobs: ["},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "jobs.yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("writing catalog: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}
