package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/rigup/internal/engine"
	"github.com/alexisbeaulieu97/rigup/internal/model"
	"github.com/alexisbeaulieu97/rigup/internal/report"
	"github.com/alexisbeaulieu97/rigup/internal/tui"
)

type applyOptions struct {
	ConfigPath string
	Skip       []string
	NoTUI      bool
}

func newApplyCmd(a *app, root *rootFlags) *cobra.Command {
	opts := applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Run every configured step in order",
		Long: "Probe each step and install whatever is missing, strictly in declaration order.\n" +
			"A failed step halts the run unless it is marked best_effort.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfigPath(opts.ConfigPath); err != nil {
				return err
			}
			return a.runApply(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringSliceVar(&opts.Skip, "skip", nil, "Step IDs to skip (comma separated or repeated)")
	cmd.Flags().BoolVar(&opts.NoTUI, "no-tui", false, "Print the report instead of showing live progress")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}

func (a *app) runApply(cmd *cobra.Command, root *rootFlags, opts applyOptions) error {
	out := cmd.OutOrStdout()
	tty := a.terminal(out)
	interactive := tty && !opts.NoTUI

	s, err := a.prepare(root, opts.ConfigPath, cmd.ErrOrStderr(), interactive)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runnerOpts := []engine.Option{
		engine.WithLogger(s.log),
		engine.WithSkip(opts.Skip...),
		engine.WithName(s.cfg.Name),
		engine.WithRunID(s.runID),
		engine.WithStepTimeout(s.cfg.Settings.StepTimeoutDuration()),
	}

	var rep *model.RunReport
	if interactive {
		program := tea.NewProgram(tui.NewModel(s.cfg.Name, s.steps, cancel), tea.WithOutput(out))
		runner, err := engine.NewRunner(s.steps, append(runnerOpts, engine.WithObserver(tui.NewObserver(program)))...)
		if err != nil {
			return err
		}
		rep, err = tui.Execute(program, func() *model.RunReport { return runner.Run(ctx, s.env) })
		if err != nil {
			s.log.Warn(fmt.Sprintf("progress display stopped: %v", err))
		}
	} else {
		runner, err := engine.NewRunner(s.steps, runnerOpts...)
		if err != nil {
			return err
		}
		rep = runner.Run(ctx, s.env)
	}

	fmt.Fprintln(out, report.New(tty && !root.noColor).Run(rep))

	if code := report.ExitCode(rep); code != 0 {
		return &exitError{code: code}
	}
	return nil
}
