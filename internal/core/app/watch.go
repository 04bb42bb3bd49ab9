package app

import (
	"context"

	"impactscan/internal/core/ports"
	"impactscan/internal/core/watcher"
)

// Watch runs the analysis once and again after every quiet period following
// file changes under the project root, until ctx is done. Each run is a
// fresh traversal.
func (a *App) Watch(ctx context.Context, entry string, source ports.ChangeSource, onResult func(*Analysis, error)) error {
	trigger := make(chan []string, 1)
	onBatch := func(paths []string) {
		paths = a.withoutOwnOutput(paths)
		if len(paths) == 0 {
			return
		}
		select {
		case trigger <- paths:
		default:
			// A run is already queued.
		}
	}
	w, err := watcher.New(watcher.Options{
		Debounce:     a.Config.Watch.Debounce,
		ExcludeDirs:  a.Config.Exclude.Dirs,
		ExcludeFiles: a.Config.Exclude.Files,
		Logger:       a.logger,
	}, onBatch)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch([]string{a.Paths.ProjectRoot}); err != nil {
		return err
	}

	onResult(a.Analyze(ctx, entry, source))
	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-trigger:
			a.logger.Info("change detected, re-running analysis", "files", len(paths))
			onResult(a.Analyze(ctx, entry, source))
		}
	}
}

// withoutOwnOutput drops the report file so writing it does not retrigger a run.
func (a *App) withoutOwnOutput(paths []string) []string {
	if a.Paths.OutputPath == "" {
		return paths
	}
	out := paths[:0]
	for _, p := range paths {
		if p != a.Paths.OutputPath {
			out = append(out, p)
		}
	}
	return out
}
