package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all templates in the registry",
		Long: `List every template registered in the registry document, with its
sections and the names of its default parameters.`,
		Example: `  # List templates
  dynsql list

  # List templates from a specific registry
  dynsql list --registry queries/sqls.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}
}

func runList(cmd *cobra.Command) error {
	eng, cfg, _, err := newEngine(cmd)
	if err != nil {
		return err
	}
	registry := eng.Registry()

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Sections", "Defaults"})

	for _, name := range registry.Names() {
		entry, _ := registry.Lookup(name)
		sections := entry.SectionNames()

		var defaults []string
		for _, secName := range sections {
			sec, _ := entry.Section(secName)
			for key := range sec.Params {
				defaults = append(defaults, key)
			}
		}
		sort.Strings(defaults)

		t.AppendRow(table.Row{
			name,
			strings.Join(sections, ", "),
			strings.Join(defaults, ", "),
		})
	}
	t.Render()

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d templates (%s)\n", registry.Count(), cfg.Registry)
	return nil
}
