package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/rigup/internal/config"
	"github.com/alexisbeaulieu97/rigup/internal/engine"
	"github.com/alexisbeaulieu97/rigup/internal/environ"
	"github.com/alexisbeaulieu97/rigup/internal/logger"
)

type rootFlags struct {
	verbose   bool
	logFormat string
	logFile   string
	noColor   bool
}

func newRootCmd(a *app) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "rigup",
		Short:         "rigup provisions a developer workstation from a declarative config",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "console", "Log format: console or json")
	cmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "Write logs to this file instead of stderr")
	cmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable coloured output")

	cmd.AddCommand(newApplyCmd(a, flags))
	cmd.AddCommand(newVerifyCmd(a, flags))
	cmd.AddCommand(newListCmd(a, flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// session is everything a command needs to run the configured steps.
type session struct {
	cfg    *config.Config
	log    *logger.Logger
	runID  string
	env    environ.Env
	steps  []engine.Step
	closer io.Closer
}

func (s *session) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// prepare loads the config, sets up logging and the environment, and
// resolves every step against the plugin registry. quiet discards logs that
// would otherwise go to stderr.
func (a *app) prepare(flags *rootFlags, configPath string, stderr io.Writer, quiet bool) (*session, error) {
	cfg, err := config.ParseConfig(configPath)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, runID: logger.NewRunID()}
	log, closer, err := newLogger(flags, stderr, quiet)
	if err != nil {
		return nil, err
	}
	s.closer = closer
	s.log = log.WithFields(map[string]any{"run_id": s.runID, "config": cfg.Name})

	info := a.platform()
	s.log.WithFields(map[string]any{"os": info.OS, "arch": info.Arch, "wsl": info.WSL, "distro": info.Distro}).Debug("platform detected")

	s.env, err = environ.Load(a.environ(), cfg.Settings.EnvFile)
	if err != nil {
		_ = s.Close()
		return nil, newCommandError("load environment", "reading settings.env_file", err, "Check that the env file exists and uses KEY=value lines.")
	}

	registry, err := newRegistry(s.log, a.runner, info, a.needsSudo(info))
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	s.steps, err = config.BuildSteps(cfg, registry, info)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func newLogger(flags *rootFlags, stderr io.Writer, quiet bool) (*logger.Logger, io.Closer, error) {
	level := "info"
	if flags.verbose {
		level = "debug"
	}

	var (
		writer io.Writer = stderr
		closer io.Closer
	)
	switch {
	case flags.logFile != "":
		f, err := os.OpenFile(flags.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		writer, closer = f, f
	case quiet:
		writer = io.Discard
	}

	var human bool
	switch strings.ToLower(flags.logFormat) {
	case "", "console":
		human = flags.logFile == ""
	case "json":
	default:
		if closer != nil {
			_ = closer.Close()
		}
		return nil, nil, fmt.Errorf("unknown log format %q (want console or json)", flags.logFormat)
	}

	log, err := logger.New(logger.Options{Level: level, HumanReadable: human, Writer: writer})
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, nil, err
	}
	return log, closer, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
