package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Kerhoff/hearth/internal/grocery"
	"github.com/Kerhoff/hearth/internal/mealplan"
)

// planFlags are shared by the commands that read a week's plan.
type planFlags struct {
	household int64
	week      string
	fixtures  string
	json      bool
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.household, "household", 0, "Household ID")
	cmd.Flags().StringVar(&f.week, "week", "", "Any date in the week, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.fixtures, "fixtures", "", "Read the household from a fixtures file instead of the database")
	cmd.Flags().BoolVar(&f.json, "json", false, "Print JSON")
}

func init() {
	var sf planFlags
	suggestCmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest dinners for the open days of a week",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, hid, err := openHousehold(ctx, sf.household, sf.fixtures)
			if err != nil {
				return err
			}
			defer b.close()
			loc, _ := location()
			date, err := parseWeek(sf.week, loc)
			if err != nil {
				return err
			}
			plan, err := b.svc.GetOrCreatePlan(ctx, hid, date)
			if err != nil {
				return err
			}
			week, err := b.svc.SuggestWeek(ctx, plan)
			if err != nil {
				return err
			}
			if sf.json {
				return printJSON(cmd.OutOrStdout(), week)
			}
			return writeSuggestions(cmd.OutOrStdout(), week)
		},
	}
	sf.register(suggestCmd)
	rootCmd.AddCommand(suggestCmd)

	var gf planFlags
	groceryCmd := &cobra.Command{
		Use:   "grocery",
		Short: "Print the grocery list for a week's planned meals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, hid, err := openHousehold(ctx, gf.household, gf.fixtures)
			if err != nil {
				return err
			}
			defer b.close()
			loc, _ := location()
			date, err := parseWeek(gf.week, loc)
			if err != nil {
				return err
			}
			plan, err := b.svc.GetOrCreatePlan(ctx, hid, date)
			if err != nil {
				return err
			}
			entries, err := b.svc.GroceryList(ctx, plan)
			if err != nil {
				return err
			}
			if gf.json {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			return writeGrocery(cmd.OutOrStdout(), entries)
		},
	}
	gf.register(groceryCmd)
	rootCmd.AddCommand(groceryCmd)
}

func writeSuggestions(w io.Writer, week mealplan.Week) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tDATE\tRECIPE\tLOCKED\tREASON")
	for _, s := range week.Suggestions {
		name := "-"
		if s.Recipe != nil {
			name = s.Recipe.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", s.Day.Label, s.Day.Date, name, s.Locked, s.Reason)
	}
	if !week.Fulfilled {
		fmt.Fprintln(tw, "\ncategory goals not met")
	}
	return tw.Flush()
}

func writeGrocery(w io.Writer, entries []grocery.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tITEM\tHAVE\tFOR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", e.Category, e.Label(), e.Have, strings.Join(e.Recipes, ", "))
	}
	return tw.Flush()
}
