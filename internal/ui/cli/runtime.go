package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"impactscan/internal/core/app"
	"impactscan/internal/core/config"
	"impactscan/internal/core/errors"
	"impactscan/internal/shared/observability"
	"impactscan/internal/shared/util"
	"impactscan/internal/ui/report"
)

func runAnalyze(ctx context.Context, opts cliOptions, entry string, stdout, stderr io.Writer) error {
	logger := configureLogging(stderr, opts.verbose)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("detect working directory: %w", err)
	}

	cfg, base, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cfg, opts, cwd); err != nil {
		return err
	}

	shutdown, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Endpoint:    cfg.Observability.OTLPEndpoint,
		Insecure:    cfg.Observability.OTLPInsecure,
		ServiceName: "impactscan",
		Version:     versionString,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("trace flush failed", "error", err)
		}
	}()

	application, err := app.New(cfg, base, logger)
	if err != nil {
		return err
	}

	if addr := cfg.Observability.MetricsAddr; addr != "" {
		server := observability.NewServer(addr, application.Status)
		if err := server.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Stop(stopCtx)
		}()
	}

	if entry != "" {
		entry = config.ResolveRelative(cwd, entry)
	}
	changesFile := ""
	if opts.changesFile != "" {
		changesFile = config.ResolveRelative(cwd, opts.changesFile)
	}
	source := application.ChangeSource(changesFile, opts.baseRef)

	emit := func(analysis *app.Analysis) error {
		return writeReport(analysis, cfg.Output.Format, application.Paths, stdout, logger)
	}

	if opts.watch {
		logger.Info("watching for changes", "root", application.Paths.ProjectRoot)
		return application.Watch(ctx, entry, source, func(analysis *app.Analysis, err error) {
			if err != nil {
				logger.Error("analysis failed", "error", err)
				return
			}
			if err := emit(analysis); err != nil {
				logger.Error("failed to write report", "error", err)
			}
		})
	}

	analysis, err := application.Analyze(ctx, entry, source)
	if err != nil {
		return err
	}
	return emit(analysis)
}

// loadConfig honours an explicit --config, then searches upward from cwd.
// Relative project paths are anchored at the config file's directory.
func loadConfig(path, cwd string) (*config.Config, string, error) {
	if path != "" {
		path = config.ResolveRelative(cwd, path)
		cfg, err := config.LoadOrDefault(path, true)
		if err != nil {
			return nil, "", errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "failed to load config"), errors.CtxPath, path)
		}
		return cfg, filepath.Dir(path), nil
	}

	if found, ok := config.FindConfigFile(cwd); ok {
		cfg, err := config.Load(found)
		if err != nil {
			return nil, "", errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "failed to load config"), errors.CtxPath, found)
		}
		slog.Debug("using config file", "path", found)
		return cfg, filepath.Dir(found), nil
	}

	cfg, err := config.LoadOrDefault(filepath.Join(cwd, config.DefaultFileName), false)
	if err != nil {
		return nil, "", errors.Wrap(err, errors.CodeValidationError, "failed to load config")
	}
	return cfg, cwd, nil
}

// applyFlagOverrides makes command line paths absolute against cwd, so they
// win over the config file's anchoring.
func applyFlagOverrides(cfg *config.Config, opts cliOptions, cwd string) error {
	if opts.root != "" {
		cfg.Project.Root = config.ResolveRelative(cwd, opts.root)
	}
	if opts.output != "" {
		cfg.Output.Path = config.ResolveRelative(cwd, opts.output)
	}
	if opts.metricsAddr != "" {
		cfg.Observability.MetricsAddr = opts.metricsAddr
	}
	if opts.format != "" {
		format := strings.ToLower(strings.TrimSpace(opts.format))
		if format != config.FormatJSON && format != config.FormatTree {
			return errors.Newf(errors.CodeValidationError, "unknown --format %q (want json or tree)", opts.format)
		}
		cfg.Output.Format = format
	}
	return nil
}

func writeReport(analysis *app.Analysis, format string, paths config.ResolvedPaths, stdout io.Writer, logger *slog.Logger) error {
	rep := report.New(analysis.Entry, analysis.Changes, analysis.Result, time.Now())

	var buf bytes.Buffer
	switch format {
	case config.FormatJSON:
		if err := rep.WriteJSON(&buf); err != nil {
			return err
		}
	default:
		plain := paths.OutputPath != "" || stdout != io.Writer(os.Stdout)
		if err := report.WriteText(&buf, rep, report.TextOptions{Root: paths.ProjectRoot, Plain: plain}); err != nil {
			return err
		}
	}

	if paths.OutputPath == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	if err := util.WriteFileWithDirs(paths.OutputPath, buf.Bytes(), 0o644); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "failed to write report"), errors.CtxPath, paths.OutputPath)
	}
	logger.Info("report written",
		"path", paths.OutputPath,
		"affected", rep.Summary.Affected,
		"duration", analysis.Duration.Round(time.Millisecond))
	return nil
}

func configureLogging(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
