package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atelier-vision/zoocard/internal/index"
	"github.com/atelier-vision/zoocard/internal/linkcheck"
)

// checkLinksCommand verifies the zoo's artifact links.
func checkLinksCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-links [card-id...]",
		Short: "Verify checkpoint, log and citation links respond",
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

			wanted := make(map[string]bool, len(args))
			for _, id := range args {
				wanted[id] = true
			}

			var refs []linkcheck.Ref
			for _, entry := range builder.Registry().List() {
				if len(wanted) > 0 && !wanted[entry.Card.ID] {
					continue
				}
				refs = append(refs, linkcheck.Collect(entry.Card)...)
			}

			checker := linkcheck.New(cfg.LinkCheck)
			results, err := checker.CheckAll(cmd.Context(), refs)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			bad := 0
			for _, r := range results {
				switch r.Status {
				case linkcheck.StatusOK:
					fmt.Fprintf(w, "ok      %s %s (%d)\n", r.Kind, r.URL, r.StatusCode)
				case linkcheck.StatusBroken:
					bad++
					fmt.Fprintf(w, "broken  %s %s (%d) in %s\n", r.Kind, r.URL, r.StatusCode, r.CardID)
				case linkcheck.StatusError:
					bad++
					fmt.Fprintf(w, "error   %s %s (%s) in %s\n", r.Kind, r.URL, r.Error, r.CardID)
				}
			}
			fmt.Fprintf(w, "%d link(s) checked, %d bad\n", len(results), bad)

			if bad > 0 {
				return fmt.Errorf("%d broken or unreachable link(s)", bad)
			}
			return nil
		},
	}

	return cmd
}
