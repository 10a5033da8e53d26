package client

import (
	"fmt"
	"net"

	"github.com/msulimowicz/robots/internal/wire"
)

// GUILink is the UDP socket bound to the client's local port, talking
// to the GUI process at guiAddr.
type GUILink struct {
	conn    *net.UDPConn
	guiAddr *net.UDPAddr
	inBuf   [wire.MaxUDPMessageSize]byte
}

func DialGUI(port uint16, guiAddress string) (*GUILink, error) {
	guiAddr, err := net.ResolveUDPAddr("udp", guiAddress)
	if err != nil {
		return nil, fmt.Errorf("could not resolve gui address: %w", err)
	}

	localAddr := &net.UDPAddr{Port: int(port)}
	conn, err := net.ListenUDP("udp", localAddr)
	if err != nil {
		return nil, fmt.Errorf("could not bind local udp port %d: %w", port, err)
	}

	return &GUILink{conn: conn, guiAddr: guiAddr}, nil
}

// SendSnapshot encodes and sends msg to the GUI as a single datagram.
func (l *GUILink) SendSnapshot(msg wire.GUIOutMsg) error {
	data, err := wire.EncodeGUIOutMsg(msg)
	if err != nil {
		return fmt.Errorf("could not encode gui snapshot: %w", err)
	}
	_, err = l.conn.WriteToUDP(data, l.guiAddr)
	return err
}

// ReadDatagram blocks for the next datagram from the GUI. A read error
// is fatal; a malformed datagram decodes to a non-nil error that the
// caller drops without touching the server.
func (l *GUILink) ReadDatagram() ([]byte, error) {
	n, _, err := l.conn.ReadFromUDP(l.inBuf[:])
	if err != nil {
		return nil, fmt.Errorf("could not read from gui socket: %w", err)
	}
	return l.inBuf[:n], nil
}

func (l *GUILink) Close() error {
	return l.conn.Close()
}
