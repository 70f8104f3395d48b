// Package cmd wires the erdling command line. The root command opens
// the TUI editor; subcommands cover headless export and config
// bootstrap.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/travisdwitt/erdling/internal/config"
	"github.com/travisdwitt/erdling/internal/project"
	"github.com/travisdwitt/erdling/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "erdling [project" + project.FileExtension + "]",
	Short: "Relational diagrams in the terminal",
	Long: `Erdling is a terminal editor for relational schema diagrams.

Open a project file directly, or run without arguments to pick one
from the current directory. Diagrams are edited on a zoomable canvas
with mouse support and exported to PNG or plain text.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoot,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .erdling.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".erdling")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("ERDLING")
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	// A missing config file is fine; the defaults apply.
	_ = viper.ReadInConfig()
}

// loadConfig resolves the effective configuration after flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return config.Config{}, err
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}
	return cfg, nil
}

// newLogger opens the configured log sink. The TUI owns the terminal,
// so without a log file logging is off entirely rather than mixed into
// the alternate screen.
func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	if cfg.LogFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	var mgr *project.Manager
	if len(args) == 1 {
		mgr, err = project.Open(args[0])
		if err != nil {
			return err
		}
		if verr := mgr.Validate(); verr != nil {
			logger.Warn("project has unresolved references", "path", args[0], "err", verr)
		}
	}

	if _, err := tui.NewProgram(cfg, logger, mgr).Run(); err != nil {
		return fmt.Errorf("running editor: %w", err)
	}
	return nil
}
