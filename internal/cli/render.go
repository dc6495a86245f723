package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atelier-vision/zoocard/internal/card"
)

// renderCommand re-emits a card as normalized markdown. It works on a
// bare file path, no config needed.
func renderCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "render <card.md>",
		Short: "Re-emit a model card as normalized markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			source, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read card: %w", err)
			}

			c := card.Parse(path, source)
			if !c.IsModelCard() {
				return fmt.Errorf("%s does not look like a model card", path)
			}

			out := card.Render(c)

			if write {
				if err := os.WriteFile(path, out, 0o644); err != nil {
					return fmt.Errorf("failed to rewrite card: %w", err)
				}
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite the file in place")

	return cmd
}
