package runner

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"
)

const (
	keyCtrlC = 0x03
	keyCtrlD = 0x04
)

// HandleKey applies one key press. It reports true when the user asked to
// quit.
func (r *Runner) HandleKey(ctx context.Context, key byte) (bool, error) {
	switch key {
	case ' ', '\r', '\n':
		return false, r.Toggle(ctx)
	case 'q', 'Q', keyCtrlC, keyCtrlD:
		return true, nil
	default:
		return false, nil
	}
}

// Interactive reads keys from in until quit, EOF or ctx cancellation, then
// stops any active session.
func (r *Runner) Interactive(ctx context.Context, in io.Reader) error {
	keys := make(chan byte)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				select {
				case keys <- buf[0]:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()
	defer r.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err == io.EOF {
				return nil
			}
			return err
		case key := <-keys:
			quit, err := r.HandleKey(ctx, key)
			if err != nil {
				log.Error().Str("op", "runner/keys").Err(err).Msg("Toggle failed")
			}
			if quit {
				return nil
			}
		}
	}
}
