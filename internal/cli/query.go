package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/eleven-am/bistro/internal/app"
	"github.com/eleven-am/bistro/internal/graph"
)

func newQueryCmd() *cobra.Command {
	var (
		file      string
		variables string
		operation string
		raw       bool
		color     bool
	)

	cmd := &cobra.Command{
		Use:   "query [document]",
		Short: "Execute a GraphQL operation against the configured backend",
		Long: `Runs one query or mutation in-process, without starting the HTTP server, and
prints the JSON response. The document comes from the argument, --file, or
stdin when the argument is "-". The command fails when the response carries
errors, after printing it.`,
		Example: `  bistro query '{ categories { id name } }'
  bistro query --variables '{"id": 2}' 'query($id: Int!) { menu(menuId: $id) { name price } }'
  bistro query -f mutation.graphql --storage memory`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			document, err := readDocument(cmd, args, file)
			if err != nil {
				return err
			}

			req := graph.Request{Query: document, OperationName: operation}
			if variables != "" {
				if err := json.Unmarshal([]byte(variables), &req.Variables); err != nil {
					return fmt.Errorf("invalid --variables: %w", err)
				}
			}

			cfg, err := loadedConfig()
			if err != nil {
				return err
			}

			a, err := app.Build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			resp := a.Schema.Exec(cmd.Context(), req)
			body, err := json.Marshal(resp)
			if err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}

			if !raw {
				body = pretty.Pretty(body)
				if color {
					body = pretty.Color(body, nil)
				}
			} else {
				body = append(body, '\n')
			}
			if _, err := cmd.OutOrStdout().Write(body); err != nil {
				return err
			}

			if len(resp.Errors) > 0 {
				return fmt.Errorf("operation returned %d error(s)", len(resp.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the document from a file")
	cmd.Flags().StringVar(&variables, "variables", "", "Variables as a JSON object")
	cmd.Flags().StringVar(&operation, "operation", "", "Operation name, for documents with several operations")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print compact JSON")
	cmd.Flags().BoolVar(&color, "color", false, "Colorize the JSON output")

	return cmd
}

func readDocument(cmd *cobra.Command, args []string, file string) (string, error) {
	var data []byte
	var err error

	switch {
	case file != "" && len(args) > 0:
		return "", fmt.Errorf("pass the document as an argument or with --file, not both")
	case file != "":
		data, err = os.ReadFile(file)
	case len(args) == 1 && args[0] == "-":
		data, err = io.ReadAll(cmd.InOrStdin())
	case len(args) == 1:
		data = []byte(args[0])
	default:
		return "", fmt.Errorf("a GraphQL document is required")
	}
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}

	document := strings.TrimSpace(string(data))
	if document == "" {
		return "", fmt.Errorf("the GraphQL document is empty")
	}
	return document, nil
}
