package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoobzio/mend"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <file> <script.yaml>",
		Short: "Replay an edit script and print the dispatch trace",
		Long: `Load a file into memory, replay a YAML edit script against it and print
every save and strategy dispatch. The file on disk is never modified.

Cycles run only on "flush" steps and once after the last step, so the
trace is deterministic.

Exit codes:
  0 - Script replayed
  1 - A strategy failed
  2 - Command error (missing file, invalid config or script)

Examples:
  mend replay main.go edits.yaml
  mend replay --config mend.toml notes.md edits.yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd, args[0], args[1])
		},
	}

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command, path, scriptPath string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	opts.hookSignals(cmd.ErrOrStderr())

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read file", err)
	}
	script, err := LoadScript(scriptPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load script", err)
	}

	r, err := mend.NewFromConfig(cfg, nil)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	r.SyncMode()

	doc := mend.NewTextDocument(string(data))
	r.AddReconcilingStrategy(mend.DefaultContentType, &traceStrategy{out: out})
	r.SetDocumentHandle(doc)
	defer doc.OnChange(r.OnDocumentChange)()

	fmt.Fprintf(out, "install %s (%d bytes)\n", r.DocumentPartitioning(), doc.Length())
	r.Install(ctx, newMemoryEditor(doc, out))

	for i, step := range script.Steps {
		fmt.Fprintln(out, step)
		if err := step.apply(ctx, r, doc); err != nil {
			r.Uninstall()
			return replayError(i, err)
		}
	}

	if r.State() == mend.StatePending || r.QueueSize() > 0 {
		fmt.Fprintln(out, "> flush (end of script)")
		if err := r.Flush(ctx); err != nil {
			r.Uninstall()
			return replayError(len(script.Steps), err)
		}
	}

	r.Uninstall()
	fmt.Fprintf(out, "result %q\n", doc.Contents())
	return nil
}

func replayError(step int, err error) error {
	msg := fmt.Sprintf("step %d failed", step+1)
	var se *mend.StrategyError
	if errors.As(err, &se) {
		return WrapExitError(ExitFailure, msg, err)
	}
	return WrapExitError(ExitCommandError, msg, err)
}
