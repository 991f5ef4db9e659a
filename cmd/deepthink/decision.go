package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"deepthink/internal/parser"
	"deepthink/internal/scoring"
	"deepthink/internal/store"
	"deepthink/internal/tracker"
)

func decisionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decision",
		Short: "Score options against weighted criteria",
	}
	cmd.AddCommand(decisionCreateCmd())
	cmd.AddCommand(decisionListCmd())
	cmd.AddCommand(decisionCriterionCmd())
	cmd.AddCommand(decisionOptionCmd())
	cmd.AddCommand(decisionRateCmd())
	cmd.AddCommand(decisionRankCmd())
	cmd.AddCommand(decisionDecideCmd())
	cmd.AddCommand(decisionArchiveCmd())
	cmd.AddCommand(decisionDeleteCmd())
	cmd.AddCommand(decisionHistoryCmd())
	cmd.AddCommand(decisionImportCmd())
	return cmd
}

func decisionCreateCmd() *cobra.Command {
	var in tracker.DecisionInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an open decision",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				d, err := a.tracker.CreateDecision(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Created decision %s\n", d.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "Decision title")
	cmd.Flags().StringVar(&in.Description, "description", "", "Decision description")
	return cmd
}

func decisionListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := store.ParseDecisionStatus(status)
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				ds, err := a.tracker.ListDecisions(ctx, parsed)
				if err != nil {
					return err
				}
				if len(ds) == 0 {
					fmt.Fprintln(os.Stdout, "No decisions found.")
					return nil
				}
				for _, d := range ds {
					fmt.Fprintf(os.Stdout, "%s  %-8s %s (%d criteria, %d options)\n", d.ID, d.Status, d.Title, len(d.Criteria), len(d.Options))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "open, decided, or archived")
	return cmd
}

func decisionCriterionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "criterion",
		Short: "Manage decision criteria",
	}
	var in tracker.CriterionInput
	add := &cobra.Command{
		Use:   "add <decision-id>",
		Short: "Add a weighted criterion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				d, err := a.tracker.AddCriterion(ctx, args[0], in)
				if err != nil {
					return err
				}
				printCriteria(d.Criteria)
				return nil
			})
		},
	}
	add.Flags().StringVar(&in.ID, "id", "", "Criterion id (defaults to a slug of the name)")
	add.Flags().StringVar(&in.Name, "name", "", "Criterion name")
	add.Flags().IntVar(&in.Weight, "weight", 5, "Weight from 0 to 10")
	add.Flags().StringVar(&in.Category, "category", "other", "financial, growth, lifestyle, values, or other")
	cmd.AddCommand(add)
	return cmd
}

func decisionOptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "option",
		Short: "Manage decision options",
	}
	var in tracker.OptionInput
	add := &cobra.Command{
		Use:   "add <decision-id>",
		Short: "Add an option",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				d, err := a.tracker.AddOption(ctx, args[0], in)
				if err != nil {
					return err
				}
				for _, o := range d.Options {
					fmt.Fprintf(os.Stdout, "%s  %s\n", o.ID, o.Name)
				}
				return nil
			})
		},
	}
	add.Flags().StringVar(&in.ID, "id", "", "Option id (defaults to a slug of the name)")
	add.Flags().StringVar(&in.Name, "name", "", "Option name")
	cmd.AddCommand(add)
	return cmd
}

func decisionRateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <decision-id> <option-id> <criterion-id> <score>",
		Short: "Score an option against a criterion (0-10)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("invalid score %q: %w", args[3], err)
			}
			return withApp(func(ctx context.Context, a *app) error {
				if _, err := a.tracker.RateOption(ctx, args[0], args[1], args[2], score); err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Rated %s on %s: %g\n", args[1], args[2], score)
				return nil
			})
		},
	}
}

func decisionRankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank <decision-id>",
		Short: "Rank a decision's options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				ranked, err := a.tracker.RankDecision(ctx, args[0])
				if err != nil {
					return err
				}
				printRanking(ranked)
				return nil
			})
		},
	}
}

func decisionDecideCmd() *cobra.Command {
	var optionID string
	cmd := &cobra.Command{
		Use:   "decide <decision-id>",
		Short: "Close a decision on an option (default: the top-ranked one)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				d, err := a.tracker.DecideDecision(ctx, args[0], optionID)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Decided %q: %s\n", d.Title, d.ChosenOptionID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&optionID, "option", "", "Chosen option id")
	return cmd
}

func decisionArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <decision-id>",
		Short: "Archive a decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				d, err := a.tracker.ArchiveDecision(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Archived %s\n", d.Title)
				return nil
			})
		},
	}
}

func decisionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <decision-id>",
		Short: "Delete a decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if err := a.tracker.DeleteDecision(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func decisionHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [decision-id]",
		Short: "Show decision history, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			return withApp(func(ctx context.Context, a *app) error {
				entries, err := a.tracker.DecisionHistory(ctx, id)
				if err != nil {
					return err
				}
				printHistory(entries)
				return nil
			})
		},
	}
}

func decisionImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Create a decision from a JSON document or a Markdown decision note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDecisionDocument(args[0])
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				d, err := a.tracker.ImportDecision(ctx, data)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Imported decision %s\n", d.ID)
				printRanking(scoring.ComputeRanking(d.Options, d.Criteria))
				return nil
			})
		},
	}
}

// readDecisionDocument returns import JSON; .md files are read as decision notes.
func readDecisionDocument(path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		note, err := parser.ParseFile(path)
		if err != nil {
			return nil, err
		}
		return note.DecisionJSON()
	}
	return readInput(path)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func printCriteria(criteria []scoring.Criterion) {
	for _, c := range criteria {
		fmt.Fprintf(os.Stdout, "%s  %s  weight %d  (%s)\n", c.ID, c.Name, c.Weight, c.Category.Label())
	}
}

func printRanking(ranked []scoring.ScoredOption) {
	if len(ranked) == 0 {
		fmt.Fprintln(os.Stdout, "No options to rank.")
		return
	}
	for i, r := range ranked {
		fmt.Fprintf(os.Stdout, "%d. %s  %g/%g  %g%%\n", i+1, r.Name, r.TotalScore, r.MaxPossibleScore, r.Percentage)
	}
}
