package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"deepthink/internal/store"
	"deepthink/internal/tracker"
	"deepthink/internal/validate"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "deepthink",
		Short:         "Weighted decisions, values gaps and goal tracking",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "deepthink.yaml", "Path to the project config")
	root.AddCommand(initCmd())
	root.AddCommand(goalCmd())
	root.AddCommand(decisionCmd())
	root.AddCommand(valuesCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func describeError(err error) string {
	var verrs validate.Errors
	switch {
	case errors.As(err, &verrs):
		msg := "invalid input:"
		for _, e := range verrs {
			msg += fmt.Sprintf("\n  %s: %s", e.Field, e.Message)
		}
		return msg
	case errors.Is(err, store.ErrNotFound):
		return fmt.Sprintf("not found: %v", err)
	case errors.Is(err, tracker.ErrClosed):
		return fmt.Sprintf("%v (only open decisions can change)", err)
	}
	return fmt.Sprintf("error: %v", err)
}
