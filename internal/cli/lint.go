package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/atelier-vision/zoocard/internal/index"
	"github.com/atelier-vision/zoocard/internal/lint"
)

// lintCommand lints the zoo's model cards. With card IDs as arguments it
// lints only those cards.
func lintCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "lint [card-id...]",
		Short: "Lint model cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			builder, err := index.NewBuilder(cfg)
			if err != nil {
				return err
			}
			if _, err := builder.Build(cmd.Context()); err != nil {
				return err
			}

			report := collectFindings(builder.Registry(), args)

			if asJSON {
				out, err := json.MarshalIndent(report.Findings, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			} else {
				printFindings(cmd, report)
			}

			if report.HasErrors() {
				return fmt.Errorf("lint found %d error(s)", report.CountBySeverity()[lint.SeverityError])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit findings as JSON")

	return cmd
}

// collectFindings gathers findings across the registry, filtered to the
// requested card IDs when given.
func collectFindings(registry *index.Registry, ids []string) *lint.Report {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	report := &lint.Report{}
	for _, entry := range registry.List() {
		if len(wanted) > 0 && !wanted[entry.Card.ID] {
			continue
		}
		report.Add(entry.Findings...)
	}

	sort.SliceStable(report.Findings, func(i, j int) bool {
		a, b := report.Findings[i], report.Findings[j]
		if a.CardID != b.CardID {
			return a.CardID < b.CardID
		}
		return a.Line < b.Line
	})

	return report
}

func printFindings(cmd *cobra.Command, report *lint.Report) {
	w := cmd.OutOrStdout()
	for _, f := range report.Findings {
		if f.Line > 0 {
			fmt.Fprintf(w, "%s:%d: %s: %s (%s)\n", f.CardID, f.Line, f.Severity, f.Message, f.Rule)
		} else {
			fmt.Fprintf(w, "%s: %s: %s (%s)\n", f.CardID, f.Severity, f.Message, f.Rule)
		}
	}

	counts := report.CountBySeverity()
	fmt.Fprintf(w, "%d error(s), %d warning(s), %d info\n",
		counts[lint.SeverityError], counts[lint.SeverityWarning], counts[lint.SeverityInfo])
}
