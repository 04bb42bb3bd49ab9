package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"impactscan/internal/engine/impact"
	"impactscan/internal/engine/tree"
)

// Summary condenses a run into counts plus the ordered affected file list.
type Summary struct {
	Nodes         int      `json:"nodes"`
	Affected      int      `json:"affected"`
	Warnings      int      `json:"warnings"`
	AffectedFiles []string `json:"affectedFiles"`
}

// Report is the JSON envelope written for one analysis run.
type Report struct {
	RunID       string            `json:"runId"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Entry       string            `json:"entry"`
	Changes     impact.ChangeSet  `json:"changes"`
	Tree        *tree.FileNode    `json:"tree"`
	Diagnostics []tree.Diagnostic `json:"diagnostics"`
	Summary     Summary           `json:"summary"`
}

// New builds the envelope. Nil collections are normalized to empty arrays
// so consumers never see JSON null for a list.
func New(entry string, changes impact.ChangeSet, result *tree.Result, generatedAt time.Time) *Report {
	r := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: generatedAt.UTC(),
		Entry:       entry,
		Changes:     changes,
		Diagnostics: []tree.Diagnostic{},
		Summary:     Summary{AffectedFiles: []string{}},
	}
	if r.Changes == nil {
		r.Changes = impact.ChangeSet{}
	}
	if result == nil {
		return r
	}

	r.Tree = result.Root
	if len(result.Diagnostics) > 0 {
		r.Diagnostics = result.Diagnostics
	}
	if files := result.AffectedFiles(); len(files) > 0 {
		r.Summary.AffectedFiles = files
	}
	r.Summary.Nodes = result.Stats.Nodes
	r.Summary.Affected = result.Stats.Affected
	r.Summary.Warnings = len(result.Diagnostics)
	return r
}

// JSON returns the indented envelope with a trailing newline.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteJSON writes the envelope to w.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := r.JSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
