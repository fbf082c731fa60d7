// Package cli implements the birdswarm CLI commands.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rcliao/birdswarm/internal/config"
	"github.com/rcliao/birdswarm/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	formatFlag string
	configPath string
	logLevel   string
	logFormat  string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "birdswarm",
	Short: "Bird swarm foraging and gossip simulation",
	Long:  "Simulates birds that forage for food and gossip about where it is. Runs are recorded in SQLite.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := loadEnv(".env"); err != nil {
			exitErr("load .env", err)
		}
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $BIRDSWARM_DB or ~/.birdswarm/runs.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config overlaid on the defaults (default: $BIRDSWARM_CONFIG)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

// loadEnv reads a .env file if there is one. Variables already set win.
func loadEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("BIRDSWARM_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".birdswarm", "runs.db")
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return os.Getenv("BIRDSWARM_CONFIG")
}

// loadConfig returns the defaults, overlaid with the config file if one is
// given and then with the environment.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if path := getConfigPath(); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger() (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)

	switch logFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", logFormat)
	}
	return log, nil
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
