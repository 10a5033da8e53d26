package server

import (
	"context"
	"fmt"
	"net"

	"github.com/phuslu/log"
)

// Server ties together the shared State, the TCP Acceptor and the
// single-goroutine GameManager into one runnable session host.
type Server struct {
	listener *net.TCPListener
	state    *State
	acceptor *Acceptor
	manager  *GameManager
	logger   *log.Logger
}

// New binds a TCP listener on params.Port and wires the acceptor and
// game manager around shared state.
func New(params Params, logger *log.Logger) (*Server, error) {
	addr := &net.TCPAddr{Port: int(params.Port)}
	listener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not listen on port %d: %w", params.Port, err)
	}

	state := NewState(params)
	return &Server{
		listener: listener,
		state:    state,
		acceptor: NewAcceptor(listener, state, logger),
		manager:  NewGameManager(params, state, logger),
		logger:   logger,
	}, nil
}

// Addr returns the bound TCP address, useful when constructed with
// port 0 (tests).
func (s *Server) Addr() *net.TCPAddr {
	return s.listener.Addr().(*net.TCPAddr)
}

// Run blocks until ctx is cancelled or the acceptor fails fatally. On
// return, the game manager goroutine is left to unwind on ctx.Done()
// on its own; the caller is expected to cancel ctx before exiting.
func (s *Server) Run(ctx context.Context) error {
	go s.manager.Run(ctx)
	return s.acceptor.Run(ctx)
}
