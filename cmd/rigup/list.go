package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/rigup/internal/report"
)

type listOptions struct {
	ConfigPath string
	Plugins    bool
	JSON       bool
}

func newListCmd(a *app, root *rootFlags) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured steps in execution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Plugins {
				return a.runListPlugins(cmd, opts)
			}
			if err := validateConfigPath(opts.ConfigPath); err != nil {
				return err
			}
			return a.runList(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().BoolVar(&opts.Plugins, "plugins", false, "List the available managers instead of steps")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	return cmd
}

type stepJSON struct {
	Index      int    `json:"index"`
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Plugin     string `json:"plugin"`
	Resource   string `json:"resource"`
	Version    string `json:"version,omitempty"`
	When       string `json:"when,omitempty"`
	BestEffort bool   `json:"best_effort"`
}

func (a *app) runList(cmd *cobra.Command, root *rootFlags, opts *listOptions) error {
	s, err := a.prepare(root, opts.ConfigPath, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	out := cmd.OutOrStdout()
	if !opts.JSON {
		fmt.Fprintln(out, report.New(a.terminal(out) && !root.noColor).Plan(s.cfg))
		return nil
	}

	steps := make([]stepJSON, 0, len(s.cfg.Steps))
	for i, step := range s.cfg.Steps {
		steps = append(steps, stepJSON{
			Index:      i + 1,
			ID:         step.ID,
			Kind:       step.Kind,
			Plugin:     step.PluginName(),
			Resource:   step.ResourceName(),
			Version:    step.Version,
			When:       step.When,
			BestEffort: step.BestEffort,
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(steps)
}

func (a *app) runListPlugins(cmd *cobra.Command, opts *listOptions) error {
	info := a.platform()
	registry, err := newRegistry(nil, a.runner, info, a.needsSudo(info))
	if err != nil {
		return err
	}

	metas := registry.List()
	out := cmd.OutOrStdout()
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(metas)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tVERSION\tDESCRIPTION")
	for _, meta := range metas {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", meta.Name, meta.Kind, meta.Version, meta.Description)
	}
	return w.Flush()
}
