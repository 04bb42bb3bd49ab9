package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"impactscan/internal/core/config"
	"impactscan/internal/core/errors"
	"impactscan/internal/core/ports"
	"impactscan/internal/data/changes"
	"impactscan/internal/engine/impact"
	"impactscan/internal/engine/parser"
	"impactscan/internal/engine/resolver"
	"impactscan/internal/engine/tree"
	"impactscan/internal/shared/observability"
	"impactscan/internal/shared/util"
)

type App struct {
	Config *config.Config
	Paths  config.ResolvedPaths
	Parser *parser.Parser

	fs        *OSFileSystem
	extractor *limitedExtractor
	ignore    *GlobIgnorePolicy
	logger    *slog.Logger

	mu      sync.RWMutex
	lastRun *Analysis
	runs    int
}

// Analysis is the outcome of one run: the change set it was computed
// against and the annotated tree.
type Analysis struct {
	Entry     string
	Changes   impact.ChangeSet
	Result    *tree.Result
	StartedAt time.Time
	Duration  time.Duration
}

func New(cfg *config.Config, cwd string, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry, err := parser.BuildLanguageRegistry(cfg.LanguageOverrides())
	if err != nil {
		return nil, err
	}
	loader, err := parser.NewGrammarLoader(registry)
	if err != nil {
		return nil, err
	}
	p := parser.NewParser(loader)

	paths := canonicalPaths(config.ResolvePaths(cfg, cwd))
	ignore, err := NewGlobIgnorePolicy(paths.ProjectRoot, cfg.Exclude.Dirs, cfg.Exclude.Files)
	if err != nil {
		return nil, err
	}

	limiter := util.NewLimiter(cfg.Traversal.ReadsPerSecond, cfg.Traversal.ReadBurst)
	return &App{
		Config:    cfg,
		Paths:     paths,
		Parser:    p,
		fs:        NewOSFileSystem(limiter),
		extractor: &limitedExtractor{parser: p, limiter: limiter},
		ignore:    ignore,
		logger:    logger,
	}, nil
}

// ChangeSource picks the change-set provider: an explicit document wins
// over git.
func (a *App) ChangeSource(changesFile, baseRef string) ports.ChangeSource {
	if changesFile == "" {
		changesFile = a.Paths.ChangesFile
	}
	if changesFile != "" {
		return &changes.FileSource{Path: config.ResolveRelative(a.Paths.ProjectRoot, changesFile), Root: a.Paths.ProjectRoot}
	}
	if baseRef == "" {
		baseRef = a.Config.Changes.BaseRef
	}
	return &changes.GitSource{
		Root:             a.Paths.ProjectRoot,
		Base:             baseRef,
		IncludeUntracked: a.Config.Changes.IncludeUntracked,
		Extractor:        a.Parser,
		Logger:           a.logger,
	}
}

// Analyze loads the change set and builds the impact tree for entry.
func (a *App) Analyze(ctx context.Context, entry string, source ports.ChangeSource) (*Analysis, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Analyze", trace.WithAttributes(attribute.String("entry", entry)))
	defer span.End()

	if entry == "" {
		entry = a.Paths.Entry
	}
	if entry == "" {
		return nil, errors.New(errors.CodeValidationError, "no entry file given and project.entry is not set")
	}
	entry = util.CanonicalPath(config.ResolveRelative(a.Paths.ProjectRoot, entry))

	start := time.Now()
	changeSet, err := source.Changes(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := changeSet.Validate(); err != nil {
		return nil, err
	}
	changeSet = canonicalChanges(changeSet)
	a.logger.Debug("change set loaded", "changes", len(changeSet))

	runFS := tree.NewExistsCache(a.fs)
	builder := tree.NewBuilder(tree.Options{
		FS:          runFS,
		Extractor:   a.extractor,
		Resolver:    a.resolverFor(changeSet, runFS),
		Ignore:      a.ignore,
		Concurrency: a.Config.Traversal.Concurrency,
		Logger:      a.logger,
	})
	result, err := builder.Build(ctx, entry, changeSet)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	analysis := &Analysis{
		Entry:     entry,
		Changes:   changeSet,
		Result:    result,
		StartedAt: start,
		Duration:  time.Since(start),
	}
	a.mu.Lock()
	a.lastRun = analysis
	a.runs++
	a.mu.Unlock()
	return analysis, nil
}

// canonicalPaths resolves symlinks so tree paths compare equal to change
// paths, which git reports relative to the real top-level directory.
func canonicalPaths(p config.ResolvedPaths) config.ResolvedPaths {
	p.ProjectRoot = util.CanonicalPath(p.ProjectRoot)
	if p.Entry != "" {
		p.Entry = util.CanonicalPath(p.Entry)
	}
	if p.OutputPath != "" {
		p.OutputPath = util.CanonicalPath(p.OutputPath)
	}
	return p
}

// canonicalChanges returns a copy of changes with symlink-free paths.
func canonicalChanges(changes impact.ChangeSet) impact.ChangeSet {
	out := make(impact.ChangeSet, len(changes))
	for i, c := range changes {
		c.ChangedFile = util.CanonicalPath(c.ChangedFile)
		out[i] = c
	}
	return out
}

// resolverFor builds a resolver for one run. Deleted files resolve as if
// present so their importers can be classified.
func (a *App) resolverFor(changeSet impact.ChangeSet, fs resolver.FileProber) *resolver.Resolver {
	var deleted []string
	for _, c := range changeSet {
		if c.ChangeType == impact.ChangeDelete {
			deleted = append(deleted, c.ChangedFile)
		}
	}
	return resolver.New(resolver.Options{
		Root:         a.Paths.ProjectRoot,
		Extensions:   a.Config.Resolver.Extensions,
		IndexFiles:   a.Config.Resolver.IndexFiles,
		Aliases:      a.Config.Resolver.Aliases,
		PythonRoots:  a.Config.Resolver.PythonRoots,
		KnownDeleted: deleted,
	}, fs)
}

func (a *App) LastAnalysis() *Analysis {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastRun
}
