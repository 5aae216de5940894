package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/milan604/vergen/pkg/vergen"
)

type keyDoc struct {
	Name     string `json:"name"`
	GoName   string `json:"go_name"`
	Category string `json:"category"`
	Help     string `json:"help"`
}

func newKeysCmd(a *app) *cobra.Command {
	var asJSON bool
	var category string

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the keys vergen can emit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var docs []keyDoc
			for _, k := range vergen.AllKeys() {
				if category != "" && k.Category() != category {
					continue
				}
				docs = append(docs, keyDoc{Name: k.Name(), GoName: k.GoName(), Category: k.Category(), Help: k.Help()})
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(docs)
			}

			name := lipgloss.NewStyle().Bold(true)
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for _, d := range docs {
				label := d.Name
				if !a.noColor {
					label = name.Render(d.Name)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", label, d.Category, d.Help)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	cmd.Flags().StringVar(&category, "category", "", "only list keys of this category (build, gobuild, git, go, sysinfo)")
	return cmd
}
