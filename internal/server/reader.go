package server

import (
	"bufio"
	"net"

	"github.com/msulimowicz/robots/internal/wire"
	"github.com/phuslu/log"
)

// Reader parses inbound frames from one client's TCP connection and
// dispatches them into State. Any parse error or socket failure closes
// the connection and erases the client from every server-state table.
type Reader struct {
	conn     *net.TCPConn
	buf      *bufio.Reader
	state    *State
	clientID ClientID
	logger   *log.Logger
}

func NewReader(conn *net.TCPConn, state *State, clientID ClientID, logger *log.Logger) *Reader {
	return &Reader{conn: conn, buf: bufio.NewReader(conn), state: state, clientID: clientID, logger: logger}
}

func (r *Reader) Run() {
	for {
		msg, err := wire.ReadClientMsg(r.buf)
		if err != nil {
			r.logger.Debug().Msgf("client %d disconnected: %v", r.clientID, err)
			r.conn.Close()
			r.state.EraseClient(r.clientID)
			return
		}
		r.handle(msg)
	}
}

func (r *Reader) handle(msg wire.ClientMsg) {
	switch m := msg.(type) {
	case wire.Join:
		if err := r.state.TryAcceptPlayer(r.clientID, m.Name, r.conn.RemoteAddr().String()); err != nil {
			r.logger.Warn().Msgf("broadcasting accepted player: %v", err)
		}
	case wire.PlaceBomb, wire.PlaceBlock, wire.Move:
		r.state.SetLastMessage(r.clientID, msg)
	}
}
