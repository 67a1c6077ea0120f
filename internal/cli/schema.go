package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eleven-am/bistro/internal/graph"
)

func newSchemaCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the composed GraphQL schema",
		Long:  "Composes the category, menu and reservation fragments and prints the formatted SDL.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sdl, err := graph.FormatSDL(graph.ComposeSDL())
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), sdl)
				return nil
			}
			if err := os.WriteFile(output, []byte(sdl), 0644); err != nil {
				return fmt.Errorf("failed to write schema: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the schema to a file instead of stdout")

	return cmd
}
