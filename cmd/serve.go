package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/churnscope/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	srvAddr    string
	srvSamples string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload form and the analysis API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		if srvAddr != "" {
			c.ListenAddr = srvAddr
		}
		if srvSamples != "" {
			c.SamplesDir = srvSamples
		}
		log, err := newLogger(c)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		srv := server.New(server.Config{
			UploadLimitMB: c.UploadLimitMB,
			Samples:       catalog(c),
			Analyze:       pipelineOptions(c, log),
		}, log)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		log.Info("starting server",
			zap.String("addr", c.ListenAddr),
			zap.String("samples_dir", c.SamplesDir),
			zap.Int("upload_limit_mb", c.UploadLimitMB))
		fmt.Printf("✓ Serving on http://%s (Ctrl+C to stop)\n", c.ListenAddr)
		return srv.Run(ctx, c.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&srvSamples, "samples-dir", "", "directory of sample datasets (default from config)")
}
