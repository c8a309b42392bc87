// ABOUTME: Catalog browsing commands: agents (with filters) and categories
// ABOUTME: Prints tab-aligned tables in the agent accent colors

package main

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/2389/toolhouse-hub/internal/catalog"
)

func newAgentsCmd(get func() *app) *cobra.Command {
	var (
		category string
		search   string
		featured bool
	)

	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List available agents",
		Example: `  toolhouse-hub agents
  toolhouse-hub agents --category Career
  toolhouse-hub agents --search email --featured`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if category != "" && !slices.Contains(a.catalog.Categories(), category) {
				return fmt.Errorf("unknown category %q (see: toolhouse-hub categories)", category)
			}

			agents := a.catalog.Filter(category, search)
			if featured {
				agents = slices.DeleteFunc(agents, func(ag catalog.Agent) bool { return !ag.Featured })
			}
			printAgents(a, agents)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only agents in this category")
	cmd.Flags().StringVarP(&search, "search", "s", "", "match name or description (case-insensitive)")
	cmd.Flags().BoolVar(&featured, "featured", false, "only featured agents")
	return cmd
}

func printAgents(a *app, agents []catalog.Agent) {
	if len(agents) == 0 {
		fmt.Fprintln(a.out, "No agents match.")
		return
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tCATEGORY\tDESCRIPTION")
	fmt.Fprintln(w, "  --\t----\t--------\t-----------")
	for _, ag := range agents {
		star := " "
		if ag.Featured {
			star = "*"
		}
		fmt.Fprintf(w, "%s %s\t%s %s\t%s\t%s\n",
			star, ag.ID, ag.IconGlyph(), ag.Name, ag.Category, truncate(ag.Description, 60))
	}
	w.Flush()
	fmt.Fprintln(a.out, a.ui.dim.Sprint("\n  * featured. Start a chat with: toolhouse-hub chat <id>"))
}

func newCategoriesCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List agent categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for _, c := range a.catalog.Categories() {
				fmt.Fprintf(w, "  %s\t%d\n", c, len(a.catalog.Filter(c, "")))
			}
			return w.Flush()
		},
	}
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
