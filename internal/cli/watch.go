package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dshills/coremark/internal/logging"
)

// DefaultDebounce is how long watch waits after the last change.
const DefaultDebounce = 150 * time.Millisecond

func newWatchCommand(g *globals) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <file.yaml>...",
		Short: "Rerun scenarios when their files change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			rerun := func() {
				err := runScenarios(ctx, g, args, cmd.OutOrStdout())
				if err != nil && !errors.Is(err, ErrScenariosFailed) {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				}
			}
			rerun()
			return watchFiles(ctx, args, debounce, rerun)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", DefaultDebounce, "quiet period before rerunning")
	return cmd
}

// watchFiles calls onChange after writes to any of files settle, until
// ctx is done. Parent directories are watched so editors that replace
// files on save are still seen.
func watchFiles(ctx context.Context, files []string, debounce time.Duration, onChange func()) error {
	logger := logging.Component("watch")

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	targets := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(ev.Name)] || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("change", logging.FieldPath, ev.Name, logging.FieldKind, ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", logging.FieldError, err)

		case <-fire:
			fire = nil
			onChange()
		}
	}
}
