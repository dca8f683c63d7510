package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pixelfinder/shimejifinder/shimeji"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <archive>",
	Short: "List the mascots discovered inside an archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		log.WithField("archive", path).Debug("analyzing")

		archive, err := shimeji.AnalyzeFile(path, shimeji.AnalyzeConfig{Logger: log})
		if err != nil {
			return err
		}

		names := archive.Shimejis()
		if len(names) == 0 {
			fmt.Println("no mascots found")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}
