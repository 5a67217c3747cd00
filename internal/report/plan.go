package report

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/rigup/internal/config"
)

// Plan lists configured steps in execution order with their kind, the
// plugin that handles them and any flags.
func (r Renderer) Plan(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}

	var b strings.Builder
	if cfg.Name != "" {
		b.WriteString(r.style(titleStyle, "rigup • "+cfg.Name))
		b.WriteByte('\n')
	}
	for i, step := range cfg.Steps {
		fmt.Fprintf(&b, "%2d. %s  %s", i+1, step.ID, step.Kind)
		if step.Kind == "package" {
			fmt.Fprintf(&b, " via %s", step.PluginName())
		}
		target := step.ResourceName()
		if step.Version != "" {
			target += "@" + step.Version
		}
		fmt.Fprintf(&b, "  %s", target)

		var flags []string
		if step.BestEffort {
			flags = append(flags, "best effort")
		}
		if step.When != "" {
			flags = append(flags, "when: "+step.When)
		}
		if step.Env != nil && (len(step.Env.PathPrepend) > 0 || len(step.Env.Set) > 0) {
			flags = append(flags, "env")
		}
		if len(flags) > 0 {
			b.WriteString(r.style(detailStyle, " ["+strings.Join(flags, ", ")+"]"))
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
