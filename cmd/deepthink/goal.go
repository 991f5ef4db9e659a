package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"deepthink/internal/history"
	"deepthink/internal/store"
	"deepthink/internal/tracker"
)

func goalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Track goals and milestones",
	}
	cmd.AddCommand(goalCreateCmd())
	cmd.AddCommand(goalListCmd())
	cmd.AddCommand(goalUpdateCmd())
	cmd.AddCommand(goalCompleteCmd())
	cmd.AddCommand(goalMilestoneCmd())
	cmd.AddCommand(goalArchiveCmd())
	cmd.AddCommand(goalDeleteCmd())
	cmd.AddCommand(goalHistoryCmd())
	return cmd
}

func goalCreateCmd() *cobra.Command {
	var in tracker.GoalInput
	var target string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(target)
			if err != nil {
				return err
			}
			in.TargetDate = date
			return withApp(func(ctx context.Context, a *app) error {
				goal, err := a.tracker.CreateGoal(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Created goal %s\n", goal.ID)
				printGoal(goal)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "Goal title")
	cmd.Flags().StringVar(&in.Description, "description", "", "Goal description")
	cmd.Flags().StringVar(&in.Category, "category", "career", "career, skills, financial, personal, or health")
	cmd.Flags().StringVar(&target, "target", "", "Target date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&in.Milestones, "milestone", nil, "Milestone title (repeatable)")
	return cmd
}

func goalListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := store.ParseGoalStatus(status)
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				goals, err := a.tracker.ListGoals(ctx, parsed)
				if err != nil {
					return err
				}
				if len(goals) == 0 {
					fmt.Fprintln(os.Stdout, "No goals found.")
					return nil
				}
				for _, g := range goals {
					fmt.Fprintf(os.Stdout, "%s  %-9s %3d%%  %s (%s)\n", g.ID, g.Status, g.Progress, g.Title, g.Category)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "active, completed, or archived")
	return cmd
}

func goalUpdateCmd() *cobra.Command {
	var title, description, category, target string
	var progress int
	cmd := &cobra.Command{
		Use:   "update <goal-id>",
		Short: "Change a goal's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd tracker.GoalUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				upd.Title = &title
			}
			if flags.Changed("description") {
				upd.Description = &description
			}
			if flags.Changed("category") {
				upd.Category = &category
			}
			if flags.Changed("progress") {
				upd.Progress = &progress
			}
			if flags.Changed("target") {
				date, err := parseDate(target)
				if err != nil {
					return err
				}
				upd.TargetDate = date
			}
			return withApp(func(ctx context.Context, a *app) error {
				goal, err := a.tracker.UpdateGoal(ctx, args[0], upd)
				if err != nil {
					return err
				}
				printGoal(goal)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().IntVar(&progress, "progress", 0, "Progress percentage (0-100)")
	cmd.Flags().StringVar(&target, "target", "", "Target date (YYYY-MM-DD)")
	return cmd
}

func goalCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <goal-id>",
		Short: "Mark a goal completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				goal, err := a.tracker.CompleteGoal(ctx, args[0])
				if err != nil {
					return err
				}
				printGoal(goal)
				return nil
			})
		},
	}
}

func goalMilestoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestone",
		Short: "Manage goal milestones",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <goal-id> <title>",
		Short: "Add a milestone to a goal",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				goal, err := a.tracker.AddMilestone(ctx, args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				printGoal(goal)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "complete <goal-id> <milestone-id>",
		Short: "Mark a milestone completed and recompute progress",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				goal, err := a.tracker.CompleteMilestone(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				printGoal(goal)
				return nil
			})
		},
	})
	return cmd
}

func goalArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <goal-id>",
		Short: "Archive a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				goal, err := a.tracker.ArchiveGoal(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Archived %s\n", goal.Title)
				return nil
			})
		},
	}
}

func goalDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <goal-id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if err := a.tracker.DeleteGoal(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func goalHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [goal-id]",
		Short: "Show goal history, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			return withApp(func(ctx context.Context, a *app) error {
				entries, err := a.tracker.GoalHistory(ctx, id)
				if err != nil {
					return err
				}
				printHistory(entries)
				return nil
			})
		},
	}
}

func printGoal(g store.Goal) {
	fmt.Fprintf(os.Stdout, "%s [%s, %s] %d%%\n", g.Title, g.Category, g.Status, g.Progress)
	if g.TargetDate != nil {
		fmt.Fprintf(os.Stdout, "Target: %s\n", g.TargetDate.Format(time.DateOnly))
	}
	for _, m := range g.Milestones {
		mark := " "
		if m.Completed {
			mark = "x"
		}
		fmt.Fprintf(os.Stdout, "  [%s] %s  %s\n", mark, m.ID, m.Title)
	}
}

func printHistory(entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stdout, "No history.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%s  %-19s %s  %s\n", e.Timestamp.Local().Format(time.DateTime), e.Action, e.EntityID, e.Description)
	}
}

func parseDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}
