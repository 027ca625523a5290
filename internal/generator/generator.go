package generator

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tanq16/speedtest/internal/utils"
)

// Generator serves /gen/<size>: size bytes of deterministic pseudo-random
// data, streamed and flushed chunk by chunk.
type Generator struct {
	chunkSize int
	seed      [32]byte
	window    time.Duration
	now       func() time.Time
}

func New(chunkSize int) *Generator {
	if chunkSize <= 0 {
		chunkSize = 100_000
	}
	return &Generator{
		chunkSize: chunkSize,
		seed:      DefaultSeed,
		window:    time.Second,
		now:       time.Now,
	}
}

func (g *Generator) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/gen/{size}", g.serveGen)
	return mux
}

func (g *Generator) serveGen(w http.ResponseWriter, r *http.Request) {
	size, err := strconv.ParseUint(r.PathValue("size"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	id := uuid.New().String()[:8]
	logger := log.With().Str("op", "generator/stream").Str("stream", id).Logger()
	logger.Info().Msgf("Init with size %s", utils.FormatBytes(size))

	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Content-Type", "application/octet-stream")
	h.Set("Content-Length", strconv.FormatUint(size, 10))
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	src := NewPayload(size, g.seed)
	buf := make([]byte, g.chunkSize)
	windowStart := g.now()
	var windowBytes, sent uint64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				logger.Info().Uint64("sent", sent).Msg("Drop")
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
			sent += uint64(n)
			now := g.now()
			if now.Sub(windowStart) < g.window {
				windowBytes += uint64(n)
			} else {
				logger.Info().Msg(utils.FormatBytes(windowBytes))
				windowStart = now
				windowBytes = uint64(n)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
	}
	logger.Info().Msg("Done")
}
