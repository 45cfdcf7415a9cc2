package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fishcast/internal/catalog"
	"fishcast/internal/engine"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and validate the scoring ruleset",
	}
	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesValidateCmd())
	return cmd
}

func rulesListCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List compiled rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}
			rules := cat.Rules()
			if category != "" {
				filtered := rules[:0:0]
				for _, rule := range rules {
					if string(rule.Category) == category {
						filtered = append(filtered, rule)
					}
				}
				rules = filtered
			}
			renderRules(cmd.OutOrStdout(), rules, cat.DisabledRuleIDs())
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only rules in this category")
	return cmd
}

func renderRules(w io.Writer, rules []engine.CompiledRule, disabled []string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("PRI"),
		headerStyle.Render("CATEGORY"),
		headerStyle.Render("MESSAGE"))

	for _, rule := range rules {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
			rule.ID, rule.Priority, string(rule.Category), dimStyle.Render(rule.MessageTR))
	}
	tw.Flush()

	if len(disabled) > 0 {
		fmt.Fprintln(w)
		for _, id := range disabled {
			fmt.Fprintln(w, dimStyle.Render("disabled: "+id))
		}
	}
}

// rulesValidateCmd recompiles the catalog, which runs the full
// referential and structural validation. With --file it validates a
// checkout's data directory before a build; a clean load prints the
// fingerprint an operator can compare against a deployed /_meta.
func rulesValidateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the catalog and ruleset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cat *catalog.Catalog
				err error
			)
			if dir != "" {
				cat, err = catalog.LoadFS(os.DirFS(dir))
			} else {
				cat, err = catalog.Load()
			}
			if err != nil {
				return fmt.Errorf("catalog validation failed: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render("catalog OK"))
			fmt.Fprintf(out, "ruleset_version  %s\n", cat.RulesetVersion())
			fmt.Fprintf(out, "fingerprint      %s\n", cat.Fingerprint())
			fmt.Fprintf(out, "rules            %d (%d disabled)\n", len(cat.Rules()), len(cat.DisabledRuleIDs()))
			fmt.Fprintf(out, "spots            %d\n", len(cat.Spots()))
			fmt.Fprintf(out, "species          %d\n", len(cat.Species()))
			fmt.Fprintf(out, "techniques       %d\n", len(cat.Techniques()))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "file", "", "validate the data/ directory under this path instead of the embedded copy")
	return cmd
}
