package server

import (
	"bufio"
	"net"

	"github.com/msulimowicz/robots/internal/wire"
	"github.com/phuslu/log"
)

// Writer blocks on a client's outbound queue and serializes each frame
// to its TCP connection in turn. A write failure closes the connection
// and the queue, which unblocks the matching Reader.
type Writer struct {
	conn   *net.TCPConn
	buf    *bufio.Writer
	queue  *BlockingQueue[wire.Frame]
	logger *log.Logger
}

func NewWriter(conn *net.TCPConn, queue *BlockingQueue[wire.Frame], logger *log.Logger) *Writer {
	return &Writer{conn: conn, buf: bufio.NewWriter(conn), queue: queue, logger: logger}
}

func (w *Writer) Run() {
	for {
		frame, ok := w.queue.Pop()
		if !ok {
			w.conn.Close()
			return
		}

		if err := frame.WriteTo(w.buf); err != nil {
			w.logger.Error().Msgf("could not write frame to %s: %v", w.conn.RemoteAddr(), err)
			w.conn.Close()
			w.queue.Close()
			return
		}
		if err := w.buf.Flush(); err != nil {
			w.logger.Error().Msgf("could not flush to %s: %v", w.conn.RemoteAddr(), err)
			w.conn.Close()
			w.queue.Close()
			return
		}
	}
}
