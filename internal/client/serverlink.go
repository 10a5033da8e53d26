package client

import (
	"bufio"
	"fmt"
	"net"

	"github.com/msulimowicz/robots/internal/wire"
)

// ServerLink is the TCP connection to the game server: a buffered
// reader for inbound frames and a buffered writer for outbound
// intents.
type ServerLink struct {
	conn *net.TCPConn
	r    *bufio.Reader
	w    *bufio.Writer
}

func DialServer(address string) (*ServerLink, error) {
	addr, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("could not resolve server address: %w", err)
	}
	conn, err := net.DialTCP("tcp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("could not connect to server: %w", err)
	}
	if err := conn.SetNoDelay(true); err != nil {
		return nil, fmt.Errorf("could not set no-delay: %w", err)
	}
	return &ServerLink{conn: conn, r: bufio.NewReader(conn), w: bufio.NewWriter(conn)}, nil
}

// ReadFrame blocks until the next frame arrives, or returns an error
// (EOF or a malformed frame) that is fatal to the session.
func (l *ServerLink) ReadFrame() (wire.Frame, error) {
	return wire.ReadFrame(l.r)
}

// WriteClientMsg serializes and flushes one intent to the server.
func (l *ServerLink) WriteClientMsg(msg wire.ClientMsg) error {
	if err := msg.WriteTo(l.w); err != nil {
		return fmt.Errorf("could not write client message: %w", err)
	}
	return l.w.Flush()
}

func (l *ServerLink) Close() error {
	return l.conn.Close()
}
