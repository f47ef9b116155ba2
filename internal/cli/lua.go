package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/coremark/internal/engine/mark"
	"github.com/dshills/coremark/internal/engine/text"
	"github.com/dshills/coremark/internal/logging"
	"github.com/dshills/coremark/internal/plugin/api"
	"github.com/dshills/coremark/internal/plugin/lua"
)

type luaFlags struct {
	textFile string
	text     string
	timeout  time.Duration
}

func newLuaCommand(g *globals) *cobra.Command {
	flags := &luaFlags{}

	cmd := &cobra.Command{
		Use:   "lua <script.lua>",
		Short: "Run a Lua script against a mark document",
		Long: `Run a Lua script with the ks.mark module bound to a document over the
given text.

Examples:
  markctl lua --text-file notes.txt walk.lua
  markctl lua --text "hello world" check.lua`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := flags.text
			if flags.textFile != "" {
				data, err := readText(flags.textFile)
				if err != nil {
					return err
				}
				content = data
			}

			opts := append(g.cfg.DocumentOptions(), mark.WithLogger(logging.Component("mark")))
			doc, err := mark.New(text.New(content), opts...)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runLua(ctx, doc, args[0], flags.timeout, cmd)
		},
	}

	cmd.Flags().StringVar(&flags.textFile, "text-file", "", "file whose contents become the document text")
	cmd.Flags().StringVar(&flags.text, "text", "", "document text")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", lua.DefaultExecutionTimeout, "script execution limit")
	return cmd
}

// runLua executes script with the mark module registered over doc.
func runLua(ctx context.Context, doc *mark.Document, script string, timeout time.Duration, cmd *cobra.Command) error {
	state, err := lua.NewState(
		lua.WithExecutionTimeout(timeout),
		lua.WithOutput(cmd.OutOrStdout()),
	)
	if err != nil {
		return err
	}
	defer state.Close()

	reg := api.NewRegistry()
	if err := reg.Register(api.NewMarkModule(doc)); err != nil {
		return err
	}
	if err := reg.InjectAll(state.LuaState()); err != nil {
		return err
	}

	logging.Component("lua").Debug("running script", logging.FieldPath, script, logging.FieldDoc, doc.ID())
	if err := state.DoFile(ctx, script); err != nil {
		return fmt.Errorf("%s: %w", script, err)
	}
	return nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading text: %w", err)
	}
	return string(data), nil
}
