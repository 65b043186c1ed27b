package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/umlbuilder/internal/renderer"
)

// Report is the JSON document written by --report.
type Report struct {
	BuildID    string       `json:"build_id"`
	Status     Status       `json:"status"`
	Format     string       `json:"format"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMS int64        `json:"duration_ms"`
	Rendered   int          `json:"rendered"`
	Skipped    int          `json:"skipped"`
	Failed     int          `json:"failed"`
	Files      []FileReport `json:"files"`
	Fresh      []string     `json:"fresh,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// FileReport describes one rendered or failed input.
type FileReport struct {
	Input      string              `json:"input"`
	OutputDir  string              `json:"output_dir"`
	Artifacts  []renderer.Artifact `json:"artifacts,omitempty"`
	Error      string              `json:"error,omitempty"`
	DurationMS int64               `json:"duration_ms"`
}

// NewReport summarizes r. buildErr is the error Build returned, if any.
func NewReport(r *Result, buildErr error) Report {
	rep := Report{
		BuildID:    r.BuildID,
		Status:     r.Status,
		Format:     r.Format.String(),
		StartedAt:  r.StartTime,
		DurationMS: r.Duration.Milliseconds(),
		Rendered:   r.Rendered(),
		Skipped:    len(r.Skipped),
		Failed:     len(r.Failed()),
		Files:      make([]FileReport, 0, len(r.Outcomes)),
	}
	for _, o := range r.Outcomes {
		fr := FileReport{
			Input:      o.Rel,
			OutputDir:  o.OutputDir,
			Artifacts:  o.Artifacts,
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			fr.Error = o.Err.Error()
		}
		rep.Files = append(rep.Files, fr)
	}
	for _, f := range r.Skipped {
		rep.Fresh = append(rep.Fresh, f.Rel)
	}
	if buildErr != nil {
		rep.Error = buildErr.Error()
	}
	return rep
}

// WriteReport writes the report for r to path, creating parent directories.
func WriteReport(path string, r *Result, buildErr error) error {
	data, err := json.MarshalIndent(NewReport(r, buildErr), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal build report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write build report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write build report: %w", err)
	}
	return nil
}
