package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var downloadCmd = &cobra.Command{
	Use:   "download FILENAME",
	Short: "Download the optimized resume for a candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		logger, _, s := setup()

		path, err := s.Downloader.Download(context.Background(), args[0])
		if err != nil {
			logger.Fatal("downloading optimized resume", zap.Error(err), zap.String("hint", errorHint(err)))
		}

		logger.Info("optimized resume saved", zap.String("filename", args[0]), zap.String("path", path))
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().String("dir", "", "directory to save the optimized resume into")
	viper.BindPFlag("download.dir", downloadCmd.Flags().Lookup("dir"))
}
