package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	downloadOutput  string
	downloadBoard   bool
	downloadBaseURL string
)

var downloadCmd = &cobra.Command{
	Use:   "download <token>...",
	Short: "Download media or boards by token",
	Long: `Download uploaded media (images, attachments) or boards by token,
without exporting a document. The file extension is taken from the content;
boards are saved as PNG.

Examples:
  feishu2html download boxcnImageToken1
  feishu2html download whbcnBoardToken1 --board -o ./assets`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", ".", "output directory")
	downloadCmd.Flags().BoolVar(&downloadBoard, "board", false, "tokens are boards, exported as PNG")
	downloadCmd.Flags().StringVar(&downloadBaseURL, "base-url", "", "open platform base URL (default: app.base_url)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	baseURL := cfg.App.BaseURL
	if cmd.Flags().Changed("base-url") {
		baseURL = downloadBaseURL
	}

	logger, cleanup, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	client, err := newClient(cfg, baseURL, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	for _, token := range args {
		dest := filepath.Join(downloadOutput, token)
		var written string
		if downloadBoard {
			written, err = client.ExportBoardImage(ctx, token, dest)
		} else {
			written, err = client.DownloadMedia(ctx, token, dest)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", token, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), written)
	}
	return nil
}
