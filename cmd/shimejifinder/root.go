// Command shimejifinder is the CLI front-end over the shimeji package:
// analyze an archive and list what it contains, or extract it straight to
// disk.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "shimejifinder",
	Short: "Discover and extract shimeji mascot packages from an archive",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.AddCommand(analyzeCmd, extractCmd)
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
