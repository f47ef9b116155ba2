package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/coremark/internal/logging"
	"github.com/dshills/coremark/internal/scenario"
)

// ErrScenariosFailed is returned when at least one scenario failed.
var ErrScenariosFailed = errors.New("scenarios failed")

func newRunCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file.yaml>...",
		Short: "Run mark scenarios",
		Long: `Run every scenario in the given YAML files against a fresh document.

Examples:
  markctl run testdata/views.yaml
  markctl run --config strict.toml scenarios/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd.Context(), g, args, cmd.OutOrStdout())
		},
	}
}

// runScenarios runs every scenario in files and prints a report.
func runScenarios(ctx context.Context, g *globals, files []string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Component("run")
	runner := scenario.NewRunner(
		scenario.WithDocumentOptions(g.cfg.DocumentOptions()...),
		scenario.WithLogger(logger),
	)
	p := newPrinter(w)

	passed, failed := 0, 0
	for _, file := range files {
		scs, err := scenario.Load(file)
		if err != nil {
			return err
		}
		for _, sc := range scs {
			res, err := runner.Run(ctx, sc)
			if err != nil {
				return fmt.Errorf("%s: %w", sc.Name, err)
			}
			p.scenario(sc, res)
			if res.Passed() {
				passed++
			} else {
				failed++
			}
		}
	}

	p.summary(passed, failed)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrScenariosFailed, failed, passed+failed)
	}
	return nil
}
