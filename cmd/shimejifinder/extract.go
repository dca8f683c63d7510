package main

import (
	"github.com/spf13/cobra"

	"github.com/pixelfinder/shimejifinder/shimeji"
)

var (
	outputDir      string
	thumbnailsOnly bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive>",
	Short: "Extract every mascot in an archive to an output directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		log.WithField("archive", path).Debug("analyzing")

		cfg := shimeji.AnalyzeConfig{OnlyThumbnails: thumbnailsOnly, Logger: log}
		archive, err := shimeji.AnalyzeFile(path, cfg)
		if err != nil {
			return err
		}

		log.WithField("count", len(archive.Shimejis())).Info("mascots discovered")
		if err := archive.Extract(outputDir); err != nil {
			return err
		}
		log.WithField("output", outputDir).Info("extraction complete")
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&outputDir, "output", "o", "output", "output directory")
	extractCmd.Flags().BoolVar(&thumbnailsOnly, "thumbnails-only", false, "write only each mascot's first image as {mascot}.png")
}
