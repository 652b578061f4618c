package main

import (
	"github.com/birka/schema/internal/config"
	"github.com/birka/schema/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Birka sport schedule service",
	Long: `schema serves the Birka sport schedule: upcoming matches from TheSportsDB,
time-corrected, windowed to the coming two weeks and annotated with the
priority and bar tags set from the screens.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		logger, err = logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml if present)")
	rootCmd.AddCommand(serveCmd, scheduleCmd, versionCmd)
}
