package generator

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const shutdownGrace = 5 * time.Second

// Serve runs the generator on ln until ctx is cancelled. Streams still
// running after the grace period are cut off.
func Serve(ctx context.Context, ln net.Listener, g *Generator) error {
	srv := &http.Server{
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	log.Info().Str("op", "generator/server").Msgf("Generator listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Str("op", "generator/server").Msg("Shutting down generator")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Str("op", "generator/server").Err(err).Msg("Grace period over, closing open streams")
			return srv.Close()
		}
		return nil
	}
}

// ListenAndServe listens on addr and calls Serve.
func ListenAndServe(ctx context.Context, addr string, g *Generator) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, g)
}
