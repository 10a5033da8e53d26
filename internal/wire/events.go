package wire

import (
	"fmt"
	"io"
)

// EventKind is the one-byte tag discriminating an Event inside a Turn.
type EventKind uint8

const (
	EventBombPlaced EventKind = iota
	EventBombExploded
	EventPlayerMoved
	EventBlockPlaced
)

// Event is one of BombPlaced, BombExploded, PlayerMoved or BlockPlaced.
type Event interface {
	Kind() EventKind
	WriteTo(w io.Writer) error
}

type BombPlaced struct {
	Id       BombId
	Position Position
}

func (BombPlaced) Kind() EventKind { return EventBombPlaced }

func (e BombPlaced) WriteTo(w io.Writer) error {
	if err := WriteU8(w, uint8(EventBombPlaced)); err != nil {
		return err
	}
	if err := WriteBombId(w, e.Id); err != nil {
		return err
	}
	return WritePosition(w, e.Position)
}

func readBombPlaced(r io.Reader) (Event, error) {
	id, err := ReadBombId(r)
	if err != nil {
		return nil, err
	}
	pos, err := ReadPosition(r)
	if err != nil {
		return nil, err
	}
	return BombPlaced{Id: id, Position: pos}, nil
}

type BombExploded struct {
	Id              BombId
	RobotsDestroyed []PlayerId
	BlocksDestroyed []Position
}

func (BombExploded) Kind() EventKind { return EventBombExploded }

func (e BombExploded) WriteTo(w io.Writer) error {
	if err := WriteU8(w, uint8(EventBombExploded)); err != nil {
		return err
	}
	if err := WriteBombId(w, e.Id); err != nil {
		return err
	}
	if err := WriteList(w, e.RobotsDestroyed, WritePlayerId); err != nil {
		return err
	}
	return WriteList(w, e.BlocksDestroyed, WritePosition)
}

func readBombExploded(r io.Reader) (Event, error) {
	id, err := ReadBombId(r)
	if err != nil {
		return nil, err
	}
	robots, err := ReadList(r, ReadPlayerId)
	if err != nil {
		return nil, err
	}
	blocks, err := ReadList(r, ReadPosition)
	if err != nil {
		return nil, err
	}
	return BombExploded{Id: id, RobotsDestroyed: robots, BlocksDestroyed: blocks}, nil
}

type PlayerMoved struct {
	Id       PlayerId
	Position Position
}

func (PlayerMoved) Kind() EventKind { return EventPlayerMoved }

func (e PlayerMoved) WriteTo(w io.Writer) error {
	if err := WriteU8(w, uint8(EventPlayerMoved)); err != nil {
		return err
	}
	if err := WritePlayerId(w, e.Id); err != nil {
		return err
	}
	return WritePosition(w, e.Position)
}

func readPlayerMoved(r io.Reader) (Event, error) {
	id, err := ReadPlayerId(r)
	if err != nil {
		return nil, err
	}
	pos, err := ReadPosition(r)
	if err != nil {
		return nil, err
	}
	return PlayerMoved{Id: id, Position: pos}, nil
}

type BlockPlaced struct {
	Position Position
}

func (BlockPlaced) Kind() EventKind { return EventBlockPlaced }

func (e BlockPlaced) WriteTo(w io.Writer) error {
	if err := WriteU8(w, uint8(EventBlockPlaced)); err != nil {
		return err
	}
	return WritePosition(w, e.Position)
}

func readBlockPlaced(r io.Reader) (Event, error) {
	pos, err := ReadPosition(r)
	if err != nil {
		return nil, err
	}
	return BlockPlaced{Position: pos}, nil
}

// ReadEvent reads one tagged Event from r.
func ReadEvent(r io.Reader) (Event, error) {
	tag, err := ReadU8(r)
	if err != nil {
		return nil, err
	}
	switch EventKind(tag) {
	case EventBombPlaced:
		return readBombPlaced(r)
	case EventBombExploded:
		return readBombExploded(r)
	case EventPlayerMoved:
		return readPlayerMoved(r)
	case EventBlockPlaced:
		return readBlockPlaced(r)
	default:
		return nil, &ProtocolError{Msg: fmt.Sprintf("unrecognized event tag %d", tag)}
	}
}

// WriteEvent writes e's tag and payload to w.
func WriteEvent(w io.Writer, e Event) error {
	return e.WriteTo(w)
}

func ReadEventList(r io.Reader) ([]Event, error) {
	return ReadList(r, ReadEvent)
}

func WriteEventList(w io.Writer, events []Event) error {
	return WriteList(w, events, WriteEvent)
}
