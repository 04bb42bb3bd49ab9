package changes

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"impactscan/internal/core/errors"
	"impactscan/internal/engine/impact"
	"impactscan/internal/engine/parser"
)

// Extractor is the subset of the symbol extractor used to diff exports.
type Extractor interface {
	Extract(path string, override []byte) (*parser.File, error)
	IsSupportedPath(path string) bool
}

// GitSource derives the change set from the working tree against a base ref.
type GitSource struct {
	Root             string
	Base             string
	IncludeUntracked bool
	Extractor        Extractor
	Logger           *slog.Logger
}

// IsGitAvailable reports whether the `git` binary is accessible via PATH.
func IsGitAvailable() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

func (s *GitSource) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *GitSource) base() string {
	if strings.TrimSpace(s.Base) == "" {
		return "HEAD"
	}
	return s.Base
}

func (s *GitSource) Changes(ctx context.Context) (impact.ChangeSet, error) {
	out, err := runGit(ctx, s.Root, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, s.Root)
	}
	top := filepath.Clean(strings.TrimSpace(string(out)))

	out, err = runGit(ctx, top, "diff", "--name-status", "--no-renames", "-z", s.base())
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxRef, s.base())
	}
	statuses, err := parseNameStatus(out)
	if err != nil {
		return nil, err
	}

	if s.IncludeUntracked {
		out, err = runGit(ctx, top, "ls-files", "--others", "--exclude-standard", "--full-name", "-z")
		if err != nil {
			return nil, err
		}
		for _, rel := range splitNUL(out) {
			statuses = append(statuses, nameStatus{path: rel, change: impact.ChangeAdd})
		}
	}

	changes := make(impact.ChangeSet, 0, len(statuses))
	for _, st := range statuses {
		abs := filepath.Join(top, filepath.FromSlash(st.path))
		change := impact.FileChange{ChangedFile: abs, ChangeType: st.change}
		if st.change == impact.ChangeModify && s.Extractor != nil && s.Extractor.IsSupportedPath(abs) {
			change.ModifiedExports = s.modifiedExports(ctx, top, st.path, abs)
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// modifiedExports returns exports added or removed between base and the
// working tree plus exports whose declaration overlaps a changed hunk.
// Any failure yields nil so the change stays coarse.
func (s *GitSource) modifiedExports(ctx context.Context, top, rel, abs string) []string {
	log := s.logger().With("path", abs)

	current, err := s.Extractor.Extract(abs, nil)
	if err != nil {
		log.Debug("cannot extract current exports", "error", err)
		return nil
	}
	oldContent, err := runGit(ctx, top, "show", s.base()+":"+rel)
	if err != nil {
		log.Debug("cannot read base content", "error", err)
		return nil
	}
	if oldContent == nil {
		// An empty base file must not fall back to reading the working copy.
		oldContent = []byte{}
	}
	previous, err := s.Extractor.Extract(abs, oldContent)
	if err != nil {
		log.Debug("cannot extract base exports", "error", err)
		return nil
	}
	patch, err := runGit(ctx, top, "diff", "-U0", "--no-color", s.base(), "--", rel)
	if err != nil {
		log.Debug("cannot diff file", "error", err)
		return nil
	}
	oldRanges, newRanges, err := hunkRanges(patch)
	if err != nil {
		log.Debug("cannot parse diff", "error", err)
		return nil
	}

	return mergeExportChanges(previous, current, oldRanges, newRanges)
}

func mergeExportChanges(previous, current *parser.File, oldRanges, newRanges []parser.LineRange) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(list []string) {
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	before := toSet(previous.ExportNames())
	after := toSet(current.ExportNames())
	for _, name := range current.ExportNames() {
		if !before[name] {
			add([]string{name})
		}
	}
	for _, name := range previous.ExportNames() {
		if !after[name] {
			add([]string{name})
		}
	}
	add(current.ExportsTouching(newRanges))
	add(previous.ExportsTouching(oldRanges))
	sort.Strings(names)
	return names
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

type nameStatus struct {
	path   string
	change impact.ChangeType
}

// parseNameStatus reads `git diff --name-status -z` output, which pairs a
// status field with a raw, unquoted path. Type changes and unmerged entries
// count as modifications.
func parseNameStatus(out []byte) ([]nameStatus, error) {
	fields := splitNUL(out)
	if len(fields)%2 != 0 {
		return nil, errors.Newf(errors.CodeInternal, "unexpected git status output: %d fields", len(fields))
	}
	var result []nameStatus
	for i := 0; i < len(fields); i += 2 {
		status, path := fields[i], fields[i+1]
		var change impact.ChangeType
		switch status[0] {
		case 'A':
			change = impact.ChangeAdd
		case 'D':
			change = impact.ChangeDelete
		case 'M', 'T', 'U':
			change = impact.ChangeModify
		default:
			continue
		}
		result = append(result, nameStatus{path: path, change: change})
	}
	return result, nil
}

// splitNUL splits -z output. Paths are kept byte for byte.
func splitNUL(out []byte) []string {
	var fields []string
	for _, field := range bytes.Split(out, []byte{0}) {
		if len(field) > 0 {
			fields = append(fields, string(field))
		}
	}
	return fields
}

func runGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := fmt.Sprintf("git %s failed", args[0])
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			msg += ": " + detail
		}
		return nil, errors.Wrap(err, errors.CodeInternal, msg)
	}
	return stdout.Bytes(), nil
}
