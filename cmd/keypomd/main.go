package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"keypom/cmd/cli"
	cmdconfig "keypom/cmd/config"
	core "keypom/core"
)

func main() {
	var env string

	rootCmd := &cobra.Command{
		Use:   "keypomd",
		Short: "Keypom capability-drop service command line",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmdconfig.LoadConfig(env)
			lvl, err := log.ParseLevel(cmdconfig.AppConfig.Logging.Level)
			if err != nil {
				lvl = log.InfoLevel
			}
			logger := log.New()
			logger.SetLevel(lvl)
			core.SetLogger(logger)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "configuration environment to merge over defaults")

	cli.RegisterRoutes(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
