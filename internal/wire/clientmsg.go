package wire

import (
	"fmt"
	"io"
)

// ClientMsgKind is the one-byte tag discriminating a ClientMsg.
type ClientMsgKind uint8

const (
	ClientMsgJoin ClientMsgKind = iota
	ClientMsgPlaceBomb
	ClientMsgPlaceBlock
	ClientMsgMove
)

// ClientMsg is one of Join, PlaceBomb, PlaceBlock or Move: the intents a
// client can send to the game server over TCP.
type ClientMsg interface {
	Kind() ClientMsgKind
	WriteTo(w io.Writer) error
}

type Join struct {
	Name string
}

func (Join) Kind() ClientMsgKind { return ClientMsgJoin }

func (m Join) WriteTo(w io.Writer) error {
	if err := WriteU8(w, uint8(ClientMsgJoin)); err != nil {
		return err
	}
	return WriteString(w, m.Name)
}

type PlaceBomb struct{}

func (PlaceBomb) Kind() ClientMsgKind { return ClientMsgPlaceBomb }

func (PlaceBomb) WriteTo(w io.Writer) error {
	return WriteU8(w, uint8(ClientMsgPlaceBomb))
}

type PlaceBlock struct{}

func (PlaceBlock) Kind() ClientMsgKind { return ClientMsgPlaceBlock }

func (PlaceBlock) WriteTo(w io.Writer) error {
	return WriteU8(w, uint8(ClientMsgPlaceBlock))
}

type Move struct {
	Direction Direction
}

func (Move) Kind() ClientMsgKind { return ClientMsgMove }

func (m Move) WriteTo(w io.Writer) error {
	if err := WriteU8(w, uint8(ClientMsgMove)); err != nil {
		return err
	}
	return WriteDirection(w, m.Direction)
}

// ReadClientMsg reads one tagged ClientMsg from r. Any tag outside
// {Join, PlaceBomb, PlaceBlock, Move}, or a Move with an out-of-range
// direction, is a *ProtocolError and is fatal to the connection it came
// from.
func ReadClientMsg(r io.Reader) (ClientMsg, error) {
	tag, err := ReadU8(r)
	if err != nil {
		return nil, err
	}
	switch ClientMsgKind(tag) {
	case ClientMsgJoin:
		name, err := ReadString(r)
		if err != nil {
			return nil, err
		}
		return Join{Name: name}, nil
	case ClientMsgPlaceBomb:
		return PlaceBomb{}, nil
	case ClientMsgPlaceBlock:
		return PlaceBlock{}, nil
	case ClientMsgMove:
		dir, err := ReadDirection(r)
		if err != nil {
			return nil, err
		}
		return Move{Direction: dir}, nil
	default:
		return nil, &ProtocolError{Msg: fmt.Sprintf("unrecognized client message tag %d", tag)}
	}
}
