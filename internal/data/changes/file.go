package changes

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"impactscan/internal/core/errors"
	"impactscan/internal/engine/impact"
)

// FileSource reads a change set document. YAML is a superset of JSON, so
// one decoder serves both:
//
//	changes:
//	  - file: src/util.ts
//	    type: modify
//	    modifiedExports: [formatDate]
type FileSource struct {
	Path string
	// Root anchors relative file entries.
	Root string
}

type document struct {
	Changes []entry `yaml:"changes"`
}

type entry struct {
	File            string   `yaml:"file"`
	ChangedFile     string   `yaml:"changedFile"`
	Type            string   `yaml:"type"`
	ChangeType      string   `yaml:"changeType"`
	ModifiedExports []string `yaml:"modifiedExports"`
}

func (s *FileSource) Changes(_ context.Context) (impact.ChangeSet, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "cannot read change set"), errors.CtxPath, s.Path)
	}
	return Parse(data, s.Root)
}

// Parse decodes a change set document. Both the short keys (file, type) and
// the report keys (changedFile, changeType) are accepted, so a report's
// "changes" block can be fed back in.
func Parse(data []byte, root string) (impact.ChangeSet, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid change set document")
	}

	changes := make(impact.ChangeSet, 0, len(doc.Changes))
	for i, e := range doc.Changes {
		file := firstNonEmpty(e.File, e.ChangedFile)
		if file == "" {
			return nil, errors.Newf(errors.CodeValidationError, "changes[%d] has no file", i)
		}
		changeType, err := impact.ParseChangeType(firstNonEmpty(e.Type, e.ChangeType))
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxPath, file)
		}
		if !filepath.IsAbs(file) {
			file = filepath.Join(root, filepath.FromSlash(file))
		}
		changes = append(changes, impact.FileChange{
			ChangedFile:     filepath.Clean(file),
			ChangeType:      changeType,
			ModifiedExports: e.ModifiedExports,
		})
	}
	if err := changes.Validate(); err != nil {
		return nil, err
	}
	return changes, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Static is an in-memory change source.
type Static impact.ChangeSet

func (s Static) Changes(_ context.Context) (impact.ChangeSet, error) {
	return impact.ChangeSet(s), nil
}
