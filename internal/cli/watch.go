package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zoobzio/mend"
	"github.com/zoobzio/mend/pkg/file"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	NoAutoSave bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Keep a reconciler installed on a file",
		Long: `Open a file, install a reconciler on it and print every strategy dispatch.

Modifications made by other programs are reloaded into the document and
reconciled after the debounce period. Stop with Ctrl-C.

Examples:
  mend watch notes.md
  mend watch --config mend.yaml --verbose main.go`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.NoAutoSave, "no-autosave", false, "reconcile without saving first")

	return cmd
}

func runWatch(opts *WatchOptions, cmd *cobra.Command, path string) error {
	out := &syncWriter{w: cmd.OutOrStdout()}
	errOut := &syncWriter{w: cmd.ErrOrStderr()}
	opts.hookSignals(errOut)

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	editor, err := file.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open file", err)
	}

	r, err := mend.NewFromConfig(cfg, nil)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	r.AddReconcilingStrategy(mend.DefaultContentType, &traceStrategy{out: out})
	r.Notifier(mend.NotifierFunc(func(_ context.Context, n mend.Notification) {
		fmt.Fprintf(errOut, "%s: %s: %s\n", n.Severity, n.Title, n.Message)
	}))

	doc := editor.Document()
	r.SetDocumentHandle(doc)
	defer doc.OnChange(r.OnDocumentChange)()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reloads, err := editor.Watch(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to watch file", err)
	}

	if opts.NoAutoSave {
		r.DisableAutoSave()
	}
	r.Install(ctx, editor)
	defer r.Uninstall()

	fmt.Fprintf(out, "watching %s (%d bytes, debounce %s)\n", editor.Path(), doc.Length(), time.Duration(cfg.Debounce))

	for {
		select {
		case <-ctx.Done():
			return nil
		case contents, ok := <-reloads:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "reloaded %s (%d bytes)\n", editor.Path(), len(contents))
		}
	}
}
