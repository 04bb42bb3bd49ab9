package tree

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"impactscan/internal/core/errors"
	"impactscan/internal/core/ports"
	"impactscan/internal/engine/impact"
	"impactscan/internal/shared/observability"
)

const DefaultConcurrency = 8

type Options struct {
	FS          ports.FileSystem
	Extractor   ports.SymbolExtractor
	Resolver    ports.ImportResolver
	Ignore      ports.IgnorePolicy
	Concurrency int
	Logger      *slog.Logger
}

// Builder walks the import graph from an entry file and annotates every
// reachable file with the impact of a change set. A Builder holds no state
// between builds and is safe for concurrent use.
type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Builder{opts: opts}
}

// Build returns the impact tree rooted at entryFile. Only an inaccessible
// entry file or cancellation fail the build; every other problem degrades
// the affected node and is reported in Result.Diagnostics.
func (b *Builder) Build(ctx context.Context, entryFile string, changes impact.ChangeSet) (*Result, error) {
	start := time.Now()
	ctx, span := observability.Tracer.Start(ctx, "tree.Build",
		trace.WithAttributes(
			attribute.String("entry", entryFile),
			attribute.Int("changes", len(changes)),
		))
	defer span.End()

	entry, err := filepath.Abs(entryFile)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeEntryUnreachable, "invalid entry path"), errors.CtxPath, entryFile)
	}
	entry = filepath.Clean(entry)

	run := b.newRun(changes)
	if !run.fs.Exists(entry) {
		err := errors.AddContext(errors.New(errors.CodeEntryUnreachable, "entry file is not accessible"), errors.CtxPath, entry)
		span.RecordError(err)
		span.SetStatus(codes.Error, "entry unreachable")
		return nil, err
	}

	buildCtx, cancel := context.WithCancel(ctx)
	run.prefetch = newPrefetcher(buildCtx, b.opts.Concurrency, run.visited, run.load)
	root, err := run.visit(buildCtx, entry)
	cancel()
	run.prefetch.wait()
	if err != nil {
		err = errors.AddContext(errors.Wrap(err, errors.CodeInternal, "traversal aborted"), errors.CtxPath, entry)
		span.RecordError(err)
		span.SetStatus(codes.Error, "aborted")
		return nil, err
	}

	run.stats.Warnings = len(run.diagnostics)
	observability.BuildDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("nodes", run.stats.Nodes),
		attribute.Int("affected", run.stats.Affected),
		attribute.Int("warnings", run.stats.Warnings),
	)
	b.opts.Logger.Debug("impact tree built",
		"entry", entry,
		"nodes", run.stats.Nodes,
		"affected", run.stats.Affected,
		"warnings", run.stats.Warnings,
		"duration", time.Since(start))

	return &Result{Root: root, Diagnostics: run.diagnostics, Stats: run.stats}, nil
}

// buildRun is the state of one traversal. Only the prefetcher touches it
// from multiple goroutines, and only through load and the visited set.
type buildRun struct {
	fs         *ExistsCache
	resolver   *resolveCache
	extractor  ports.SymbolExtractor
	ignore     ports.IgnorePolicy
	classifier *impact.Classifier
	changes    impact.ChangeSet
	logger     *slog.Logger

	visited  *visitedSet
	prefetch *prefetcher

	diagnostics []Diagnostic
	stats       Stats
}

func (b *Builder) newRun(changes impact.ChangeSet) *buildRun {
	resolver := &resolveCache{resolver: b.opts.Resolver}
	return &buildRun{
		fs:         cachedFS(b.opts.FS),
		resolver:   resolver,
		extractor:  b.opts.Extractor,
		ignore:     b.opts.Ignore,
		classifier: impact.NewClassifier(resolver),
		changes:    changes,
		logger:     b.opts.Logger,
		visited:    newVisitedSet(),
	}
}

func (r *buildRun) typeOf(path string) NodeType {
	if r.extractor.IsSupportedPath(path) {
		return NodeCode
	}
	return NodeAsset
}

// load does the I/O for one file: access check, extraction and import
// resolution. It runs on prefetch goroutines and must not touch the tree.
func (r *buildRun) load(path string) *loadResult {
	res := &loadResult{nodeType: NodeAsset}
	if !r.fs.Exists(path) {
		return res
	}
	res.exists = true
	res.nodeType = r.typeOf(path)
	if res.nodeType != NodeCode {
		return res
	}
	if r.ignore != nil && r.ignore.ShouldIgnore(path) {
		res.ignored = true
		return res
	}

	file, err := r.extractor.Extract(path, nil)
	if err != nil {
		res.extractErr = err
		return res
	}
	res.file = file
	res.imports = make([]importTarget, 0, len(file.Imports))
	for _, imp := range file.Imports {
		target := importTarget{source: imp.Source}
		if resolved, ok := r.resolver.Resolve(path, imp.Source); ok {
			target.path = resolved
			target.accessible = r.fs.Exists(resolved)
		}
		res.imports = append(res.imports, target)
	}
	return res
}

func (r *buildRun) visit(ctx context.Context, path string) (*FileNode, error) {
	if !r.visited.Mark(path) {
		r.count("stub")
		return &FileNode{File: path, Type: r.typeOf(path), Children: []*FileNode{}, Stub: true}, nil
	}

	res, err := r.prefetch.await(ctx, path)
	if err != nil {
		return nil, err
	}

	node := &FileNode{File: path, Type: res.nodeType, Children: []*FileNode{}}
	defer r.count(string(node.Type))

	if !res.exists {
		r.warn(path, StageAccess, "file is not accessible", nil)
		return node, nil
	}

	change, changed := r.changes.Lookup(path)
	if changed {
		node.ChangeType = change.ChangeType
		node.Reason = impact.DefaultReason(change.ChangeType)
	}

	if node.Type == NodeAsset {
		if changed {
			node.Reason = impact.AssetReason(change.ChangeType)
			r.markAffected(node)
		}
		return node, nil
	}

	if res.ignored {
		r.logger.Debug("skipping ignored file", "path", path)
		return node, nil
	}
	if res.extractErr != nil {
		r.warn(path, StageExtract, "symbol extraction failed", res.extractErr)
		return node, nil
	}

	r.stats.Parsed++
	node.Symbols = &Symbols{
		Imports: res.file.Imports,
		Exports: res.file.ExportNames(),
	}
	if entries := r.classifier.Classify(path, res.file.Imports, r.changes); len(entries) > 0 {
		node.Reason = impact.FormatReason(entries)
		r.markAffected(node)
	}

	for _, target := range res.imports {
		if target.path == "" {
			r.logger.Debug("unresolved import", "path", path, "source", target.source)
			continue
		}
		if !target.accessible {
			r.warn(target.path, StageImport, fmt.Sprintf("import %q from %s is not accessible", target.source, path), nil)
			continue
		}
		child, err := r.visit(ctx, target.path)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func (r *buildRun) markAffected(node *FileNode) {
	node.IsAffected = true
	r.stats.Affected++
	observability.AffectedNodesTotal.Inc()
}

func (r *buildRun) count(kind string) {
	r.stats.Nodes++
	if kind == "stub" {
		r.stats.Stubs++
	}
	observability.NodesVisitedTotal.WithLabelValues(kind).Inc()
}

func (r *buildRun) warn(path, stage, msg string, err error) {
	d := Diagnostic{Path: path, Stage: stage, Message: msg}
	if err != nil {
		d.Message = fmt.Sprintf("%s: %v", msg, err)
		r.logger.Warn(msg, "path", path, "stage", stage, "error", err)
	} else {
		r.logger.Warn(msg, "path", path, "stage", stage)
	}
	r.diagnostics = append(r.diagnostics, d)
	observability.TraversalWarningsTotal.WithLabelValues(stage).Inc()
}
