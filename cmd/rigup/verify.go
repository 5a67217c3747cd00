package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/rigup/internal/engine"
	"github.com/alexisbeaulieu97/rigup/internal/report"
)

type verifyOptions struct {
	ConfigPath string
	Skip       []string
}

func newVerifyCmd(a *app, root *rootFlags) *cobra.Command {
	opts := verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Probe every step without installing anything",
		Long:  "Report which configured resources are present. Exits 1 if any would be installed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfigPath(opts.ConfigPath); err != nil {
				return err
			}
			return a.runVerify(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringSliceVar(&opts.Skip, "skip", nil, "Step IDs to skip (comma separated or repeated)")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}

func (a *app) runVerify(cmd *cobra.Command, root *rootFlags, opts verifyOptions) error {
	s, err := a.prepare(root, opts.ConfigPath, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	runner, err := engine.NewRunner(s.steps,
		engine.WithLogger(s.log),
		engine.WithSkip(opts.Skip...),
		engine.WithStepTimeout(s.cfg.Settings.StepTimeoutDuration()),
	)
	if err != nil {
		return err
	}

	summary, err := runner.Verify(ctx, s.env)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.New(a.terminal(out) && !root.noColor).Verification(summary))

	if code := summary.ExitCode(); code != 0 {
		return &exitError{code: code}
	}
	return nil
}
