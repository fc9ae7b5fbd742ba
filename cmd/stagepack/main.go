package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stagepack/stagepack/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	configFileName = "config"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:           "stagepack",
	Short:         "Manage immutable versioned packages on an object-storage stage",
	Version:       version.Detailed(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.PersistentFlags().StringP("stage", "s", "", "Stage reference for package storage (e.g. @my_db.my_schema.packages)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", red("ERROR"), err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	setupLogger(cmd)

	// config path; persistent flags live on the root command
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("config") {
		configFilePath, _ := flags.GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".stagepack"))
		viper.AddConfigPath(filepath.Join(home, ".config/stagepack"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	// Bind flags to viper
	viper.BindPFlag("stage", flags.Lookup("stage"))

	// Set up environment variables
	viper.SetEnvPrefix("STAGEPACK")
	viper.AutomaticEnv()

	return nil
}

func setupLogger(cmd *cobra.Command) {
	level := slog.LevelInfo
	if lvl, _ := cmd.Root().PersistentFlags().GetString("log-level"); lvl != "" {
		_ = level.UnmarshalText([]byte(lvl))
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

// stageRef returns the configured stage reference or fails the command.
func stageRef() (string, error) {
	s := viper.GetString("stage")
	if s == "" {
		return "", errors.New("no stage configured, use --stage or set STAGEPACK_STAGE")
	}
	return s, nil
}
