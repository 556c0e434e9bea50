package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/mend"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Config  string // path to a .yaml, .json or .toml reconciler config
}

// NewRootCommand creates the root command for the mend CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mend",
		Short: "mend - incremental reconciliation with autosave",
		Long: `Drive a reconciler over a text file.

Edits are batched into dirty regions and handed to a tracing strategy once
the debounce period passes, after the file has been saved.`,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log reconciler signals to stderr")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "reconciler config file (yaml|json|toml)")

	// Add subcommands
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

// loadConfig returns the config named by --config, or the defaults.
func (o *RootOptions) loadConfig() (mend.Config, error) {
	if o.Config == "" {
		return mend.DefaultConfig(), nil
	}
	cfg, err := mend.LoadConfig(o.Config)
	if err != nil {
		return mend.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// hookSignals prints reconciler lifecycle signals to w when verbose.
func (o *RootOptions) hookSignals(w io.Writer) {
	if !o.Verbose {
		return
	}

	capitan.Hook(mend.ReconcilerStateChanged, func(_ context.Context, e *capitan.Event) {
		from, _ := mend.KeyOldState.From(e)
		to, _ := mend.KeyNewState.From(e)
		fmt.Fprintf(w, "[state] %s -> %s\n", from, to)
	})
	capitan.Hook(mend.AutoSaveSucceeded, func(_ context.Context, e *capitan.Event) {
		d, _ := mend.KeyDuration.From(e)
		fmt.Fprintf(w, "[autosave] ok in %s\n", d)
	})
	capitan.Hook(mend.AutoSaveFailed, func(_ context.Context, e *capitan.Event) {
		msg, _ := mend.KeyError.From(e)
		fmt.Fprintf(w, "[autosave] failed: %s\n", msg)
	})
	capitan.Hook(mend.CycleCompleted, func(_ context.Context, e *capitan.Event) {
		n, _ := mend.KeyRegions.From(e)
		d, _ := mend.KeyDuration.From(e)
		fmt.Fprintf(w, "[cycle] %d regions in %s\n", n, d)
	})
	capitan.Hook(mend.StrategyFailed, func(_ context.Context, e *capitan.Event) {
		msg, _ := mend.KeyError.From(e)
		fmt.Fprintf(w, "[strategy] %s\n", msg)
	})
}
