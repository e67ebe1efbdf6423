package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var (
		paramsJSON string
		paramPairs []string
		section    string
	)

	cmd := &cobra.Command{
		Use:   "render <name>",
		Short: "Render a registry template with parameters substituted",
		Long: `Render the named template from the registry, substituting parameters,
merging per-template defaults, and expanding sub-templates.

Parameters come from --params-json (a JSON object) and repeated
--param key=value flags; the latter win on collisions.`,
		Example: `  # Render a template without parameters
  dynsql render user_count

  # Render with scalar parameters
  dynsql render user_by_id --param user_id=1

  # Render with structured parameters
  dynsql render user_in --params-json '{"ids": [1, 2, 3]}'

  # Render an auxiliary section instead of main
  dynsql render user_page --section where_clause --param name=bob`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], section, paramsJSON, paramPairs)
		},
	}

	cmd.Flags().StringVar(&paramsJSON, "params-json", "", "Parameters as a JSON object")
	cmd.Flags().StringArrayVarP(&paramPairs, "param", "p", nil, "Parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&section, "section", "s", "", "Section to render (default: main)")

	return cmd
}

func runRender(cmd *cobra.Command, name, section, paramsJSON string, paramPairs []string) error {
	eng, _, _, err := newEngine(cmd)
	if err != nil {
		return err
	}

	params, err := parseParams(paramsJSON, paramPairs)
	if err != nil {
		return err
	}

	var sql string
	if section == "" {
		sql, err = eng.Render(name, params)
	} else {
		sql, err = eng.RenderSection(name, section, params)
	}
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), sql)
	return nil
}
