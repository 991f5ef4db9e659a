package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"deepthink/internal/tracker"
	"deepthink/internal/values"
)

func valuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "values",
		Short: "Rate personal values and find the largest gaps",
	}
	cmd.AddCommand(valuesSetCmd())
	cmd.AddCommand(valuesReportCmd())
	return cmd
}

func valuesSetCmd() *cobra.Command {
	var id, name, description, category string
	var importance, alignment int
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Add or replace one value rating",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				id = name
			}
			v, err := values.NewValue(id, name, description, importance, alignment)
			if err != nil {
				return err
			}
			if v.Category, err = values.ParseCategory(category); err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				vals, err := a.tracker.SetValue(ctx, v)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Saved %s (gap %d). %d values rated.\n", v.Name, v.Gap(), len(vals))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Value id (defaults to the name)")
	cmd.Flags().StringVar(&name, "name", "", "Value name")
	cmd.Flags().StringVar(&description, "description", "", "What the value means to you")
	cmd.Flags().StringVar(&category, "category", "", "personal, professional, relationships, wellbeing, or other")
	cmd.Flags().IntVar(&importance, "importance", 0, "How much it matters (1-10)")
	cmd.Flags().IntVar(&alignment, "alignment", 0, "How well your situation honours it (1-10)")
	return cmd
}

func valuesReportCmd() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Rank values by gap and list the most important ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				report, err := a.tracker.ValuesReport(ctx, top)
				if err != nil {
					return err
				}
				if len(report.ByGap) == 0 {
					fmt.Fprintln(os.Stdout, "No values rated yet.")
					return nil
				}
				fmt.Fprintln(os.Stdout, "Top values:")
				for _, r := range report.Top {
					fmt.Fprintf(os.Stdout, "  %s (importance %d)\n", r.Name, r.Importance)
				}
				fmt.Fprintln(os.Stdout, "By gap:")
				for _, r := range report.ByGap {
					fmt.Fprintf(os.Stdout, "  %-16s gap %+d  [%s]\n", r.Name, r.Gap, r.Bucket)
					if r.Advice != "" {
						fmt.Fprintf(os.Stdout, "    %s\n", r.Advice)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&top, "top", tracker.DefaultTopValues, "How many values to list by importance")
	return cmd
}
