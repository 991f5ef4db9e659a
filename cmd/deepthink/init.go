package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"deepthink/internal/config"
)

func initCmd() *cobra.Command {
	var projectName string
	var dsn string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new deepthink project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(filepath.Dir(configPath), projectName, dsn)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&dsn, "dsn", "sqlite://deepthink.db", "Database DSN (sqlite://, postgres://, redis://)")
	return cmd
}

func runInit(dir, projectName, dsn string) error {
	if _, err := config.Backend(dsn); err != nil {
		return err
	}
	configFile := filepath.Join(dir, "deepthink.yaml")
	adviceFile := filepath.Join(dir, "advice.yaml")
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("%s already exists", configFile)
	}
	if _, err := os.Stat(adviceFile); err == nil {
		return fmt.Errorf("%s already exists", adviceFile)
	}

	cfg := config.ProjectConfig{
		Project:  projectName,
		Version:  1,
		Database: config.DatabaseConfig{DSN: dsn},
		History:  config.HistoryConfig{MaxEntries: config.DefaultHistoryMaxEntries},
		Log:      config.LogConfig{Level: "info", Format: "console"},
		Advice:   "advice.yaml",
	}
	configContents, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", configFile, err)
	}
	if err := os.WriteFile(configFile, configContents, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configFile, err)
	}
	if err := os.WriteFile(adviceFile, []byte(config.DefaultAdviceYAML), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", adviceFile, err)
	}

	return nil
}
