package wire

import (
	"bytes"
	"fmt"
	"io"
)

// GUIInKind is the one-byte tag of a GUI→client UDP input datagram.
type GUIInKind uint8

const (
	GUIInPlaceBomb GUIInKind = iota
	GUIInPlaceBlock
	GUIInMove
)

// GUIInMsg is one of PlaceBomb, PlaceBlock or Move: the datagrams the
// local GUI sends to the client proxy. A datagram whose size or tag
// does not match one of these is silently dropped by the caller, never
// surfaced as an error that reaches the server.
type GUIInMsg interface {
	guiInMsg()
}

type GUIInPlaceBombMsg struct{}

func (GUIInPlaceBombMsg) guiInMsg() {}

type GUIInPlaceBlockMsg struct{}

func (GUIInPlaceBlockMsg) guiInMsg() {}

type GUIInMoveMsg struct {
	Direction uint8
}

func (GUIInMoveMsg) guiInMsg() {}

// sizes of the fixed-layout GUI input datagrams: 1 byte tag, plus a
// direction byte for Move.
const (
	guiInFixedMsgSize = 1
	guiInMoveMsgSize  = 2
)

// DecodeGUIInMsg parses a single UDP datagram from the GUI. It returns
// an error for any shape that doesn't match one of the three known
// messages; the caller is expected to drop the datagram rather than
// propagate the error anywhere.
func DecodeGUIInMsg(datagram []byte) (GUIInMsg, error) {
	if len(datagram) < 1 {
		return nil, &ProtocolError{Msg: "empty gui datagram"}
	}
	switch GUIInKind(datagram[0]) {
	case GUIInPlaceBomb:
		if len(datagram) != guiInFixedMsgSize {
			return nil, &ProtocolError{Msg: "malformed place-bomb gui datagram"}
		}
		return GUIInPlaceBombMsg{}, nil
	case GUIInPlaceBlock:
		if len(datagram) != guiInFixedMsgSize {
			return nil, &ProtocolError{Msg: "malformed place-block gui datagram"}
		}
		return GUIInPlaceBlockMsg{}, nil
	case GUIInMove:
		if len(datagram) != guiInMoveMsgSize {
			return nil, &ProtocolError{Msg: "malformed move gui datagram"}
		}
		return GUIInMoveMsg{Direction: datagram[1]}, nil
	default:
		return nil, &ProtocolError{Msg: fmt.Sprintf("unrecognized gui datagram tag %d", datagram[0])}
	}
}

// GUIOutKind is the one-byte tag of a client→GUI UDP output datagram.
type GUIOutKind uint8

const (
	GUIOutLobby GUIOutKind = iota
	GUIOutGame
)

// GUIOutMsg is either a LobbySnapshot or a GameSnapshot: the full
// derived-state snapshot the client proxy sends to the GUI on every
// state-changing server frame.
type GUIOutMsg interface {
	Kind() GUIOutKind
	WriteTo(w io.Writer) error
}

// LobbySnapshot mirrors ClientState while is_lobby is true.
type LobbySnapshot struct {
	ServerName      string
	PlayersCount    uint8
	SizeX           uint16
	SizeY           uint16
	GameLength      uint16
	ExplosionRadius uint16
	BombTimer       uint16
	Players         map[PlayerId]Player
}

func (LobbySnapshot) Kind() GUIOutKind { return GUIOutLobby }

func (s LobbySnapshot) WriteTo(w io.Writer) error {
	if err := WriteU8(w, uint8(GUIOutLobby)); err != nil {
		return err
	}
	if err := WriteString(w, s.ServerName); err != nil {
		return err
	}
	if err := WriteU8(w, s.PlayersCount); err != nil {
		return err
	}
	if err := WriteU16(w, s.SizeX); err != nil {
		return err
	}
	if err := WriteU16(w, s.SizeY); err != nil {
		return err
	}
	if err := WriteU16(w, s.GameLength); err != nil {
		return err
	}
	if err := WriteU16(w, s.ExplosionRadius); err != nil {
		return err
	}
	if err := WriteU16(w, s.BombTimer); err != nil {
		return err
	}
	return WriteMap(w, s.Players, WritePlayerId, WritePlayer)
}

// GameSnapshot mirrors ClientState while is_lobby is false.
type GameSnapshot struct {
	ServerName      string
	SizeX           uint16
	SizeY           uint16
	GameLength      uint16
	Turn            uint16
	Players         map[PlayerId]Player
	PlayerPositions map[PlayerId]Position
	Blocks          []Position
	Bombs           []Bomb
	Explosions      []Position
	Scores          map[PlayerId]Score
}

func (GameSnapshot) Kind() GUIOutKind { return GUIOutGame }

func (s GameSnapshot) WriteTo(w io.Writer) error {
	if err := WriteU8(w, uint8(GUIOutGame)); err != nil {
		return err
	}
	if err := WriteString(w, s.ServerName); err != nil {
		return err
	}
	if err := WriteU16(w, s.SizeX); err != nil {
		return err
	}
	if err := WriteU16(w, s.SizeY); err != nil {
		return err
	}
	if err := WriteU16(w, s.GameLength); err != nil {
		return err
	}
	if err := WriteU16(w, s.Turn); err != nil {
		return err
	}
	if err := WriteMap(w, s.Players, WritePlayerId, WritePlayer); err != nil {
		return err
	}
	if err := WriteMap(w, s.PlayerPositions, WritePlayerId, WritePosition); err != nil {
		return err
	}
	if err := WriteList(w, s.Blocks, WritePosition); err != nil {
		return err
	}
	if err := WriteList(w, s.Bombs, WriteBomb); err != nil {
		return err
	}
	if err := WriteList(w, s.Explosions, WritePosition); err != nil {
		return err
	}
	return WriteMap(w, s.Scores, WritePlayerId, WriteScore)
}

// EncodeGUIOutMsg serializes msg into a single datagram. It fails if the
// encoded size exceeds MaxUDPMessageSize, since such a snapshot could
// never be delivered as one UDP datagram.
func EncodeGUIOutMsg(msg GUIOutMsg) ([]byte, error) {
	buf := bytes.Buffer{}
	if err := msg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("could not encode gui out message: %w", err)
	}
	if buf.Len() > MaxUDPMessageSize {
		return nil, fmt.Errorf("encoded gui message too large: %d bytes", buf.Len())
	}
	return buf.Bytes(), nil
}
