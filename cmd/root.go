package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/linguabot/internal/config"
	"github.com/example/linguabot/internal/database"
)

var v = config.NewViper()

var rootCmd = &cobra.Command{
	Use:   "linguabot",
	Short: "Telegram bot for learning languages",
	Long: `linguabot runs a Telegram bot with spaced-repetition flashcards,
quizzes, a placement test, lessons, roleplay scenarios and a tutor chat.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() { config.LoadDotEnv() })

	rootCmd.PersistentFlags().String("db-driver", "", "database driver (sqlite3 or postgres)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string or sqlite file path")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	bindFlag(v, config.KeyDBDriver, "db-driver")
	bindFlag(v, config.KeyDBDSN, "db-dsn")
	bindFlag(v, config.KeyLogLevel, "log-level")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(placementCmd)
}

func bindFlag(v *viper.Viper, key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// loadConfig reads the configuration and installs the process logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	config.NewLogger(os.Stderr, cfg.LogLevel)
	return cfg, nil
}

// openDatabase loads the configuration and connects the shared database handle.
// The returned function closes it.
func openDatabase() (*config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := database.Connect(cfg.DBDriver, cfg.DBDSN); err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to database")
	}
	return cfg, func() { _ = database.Close() }, nil
}
