package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/travisdwitt/erdling/internal/config"
)

const configFileName = ".erdling.toml"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage erdling configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter " + configFileName + " with the defaults",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(configFileName); err == nil {
		return fmt.Errorf("%s already exists, not overwriting", configFileName)
	}

	data, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFileName, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", configFileName, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configFileName)
	return nil
}
