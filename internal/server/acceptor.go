package server

import (
	"context"
	"fmt"
	"net"

	"github.com/cespare/xxhash/v2"
	"github.com/phuslu/log"
)

// Acceptor listens for inbound TCP connections, assigns each one a
// monotonic ClientID, and spawns its reader and writer goroutines.
type Acceptor struct {
	listener *net.TCPListener
	state    *State
	logger   *log.Logger
}

func NewAcceptor(listener *net.TCPListener, state *State, logger *log.Logger) *Acceptor {
	return &Acceptor{listener: listener, state: state, logger: logger}
}

// Run accepts connections until ctx is cancelled or the listener fails.
func (a *Acceptor) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		a.listener.Close()
	}()

	for {
		conn, err := a.listener.AcceptTCP()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("could not accept connection: %w", err)
		}

		if err := conn.SetNoDelay(true); err != nil {
			a.logger.Error().Msgf("could not set no-delay on %s: %v", conn.RemoteAddr(), err)
		}

		id := a.state.AcceptClient()
		queue := a.state.CreateQueue(id)

		a.logger.Debug().
			Uint64("client_id", uint64(id)).
			Str("addr", conn.RemoteAddr().String()).
			Uint64("addr_fp", xxhash.Sum64String(conn.RemoteAddr().String())).
			Msg("accepted connection")

		writer := NewWriter(conn, queue, a.logger)
		go writer.Run()

		reader := NewReader(conn, a.state, id, a.logger)
		go reader.Run()
	}
}
