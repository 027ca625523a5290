package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tanq16/speedtest/internal/generator"
)

func newServeCmd() *cobra.Command {
	var host string
	var port int
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "serve [--host HOST] [--port PORT]",
		Short: "Serve generated payloads on /gen/<bytes>",
		Long: `Serve deterministic pseudo-random payloads of any requested size.

Examples:
  speedtest serve
  speedtest serve --port 8080
  curl -o /dev/null http://localhost:25545/gen/1000000000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := *cfg.Server
			if cmd.Flags().Changed("host") {
				sc.Host = host
			}
			if cmd.Flags().Changed("port") {
				sc.Port = port
			}
			if cmd.Flags().Changed("chunk-size") {
				sc.ChunkSize = chunkSize
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return generator.ListenAndServe(ctx, sc.ListenAddr(), generator.New(sc.ChunkSize))
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Address to listen on (default 0.0.0.0)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default 25545)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Bytes written per flush (default 100000)")
	return cmd
}
