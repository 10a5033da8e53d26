package wire

import (
	"fmt"
	"io"
)

// FrameKind is the one-byte tag discriminating a server-to-client Frame.
type FrameKind uint8

const (
	FrameHello FrameKind = iota
	FrameAcceptedPlayer
	FrameGameStarted
	FrameTurn
	FrameGameEnded
)

// Frame is one of Hello, AcceptedPlayer, GameStarted, Turn or GameEnded:
// the messages the game server broadcasts to TCP clients.
type Frame interface {
	Kind() FrameKind
	WriteTo(w io.Writer) error
}

// Hello carries the server's fixed game parameters, sent to every client
// immediately on connect and replayed from history to late joiners.
type Hello struct {
	ServerName      string
	PlayersCount    uint8
	SizeX           uint16
	SizeY           uint16
	GameLength      uint16
	ExplosionRadius uint16
	BombTimer       uint16
}

func (Hello) Kind() FrameKind { return FrameHello }

func (m Hello) WriteTo(w io.Writer) error {
	if err := WriteU8(w, uint8(FrameHello)); err != nil {
		return err
	}
	if err := WriteString(w, m.ServerName); err != nil {
		return err
	}
	if err := WriteU8(w, m.PlayersCount); err != nil {
		return err
	}
	if err := WriteU16(w, m.SizeX); err != nil {
		return err
	}
	if err := WriteU16(w, m.SizeY); err != nil {
		return err
	}
	if err := WriteU16(w, m.GameLength); err != nil {
		return err
	}
	if err := WriteU16(w, m.ExplosionRadius); err != nil {
		return err
	}
	return WriteU16(w, m.BombTimer)
}

func readHello(r io.Reader) (Frame, error) {
	serverName, err := ReadString(r)
	if err != nil {
		return nil, err
	}
	playersCount, err := ReadU8(r)
	if err != nil {
		return nil, err
	}
	sizeX, err := ReadU16(r)
	if err != nil {
		return nil, err
	}
	sizeY, err := ReadU16(r)
	if err != nil {
		return nil, err
	}
	gameLength, err := ReadU16(r)
	if err != nil {
		return nil, err
	}
	explosionRadius, err := ReadU16(r)
	if err != nil {
		return nil, err
	}
	bombTimer, err := ReadU16(r)
	if err != nil {
		return nil, err
	}
	return Hello{
		ServerName:      serverName,
		PlayersCount:    playersCount,
		SizeX:           sizeX,
		SizeY:           sizeY,
		GameLength:      gameLength,
		ExplosionRadius: explosionRadius,
		BombTimer:       bombTimer,
	}, nil
}

// AcceptedPlayer announces a newly-admitted lobby player.
type AcceptedPlayer struct {
	Id     PlayerId
	Player Player
}

func (AcceptedPlayer) Kind() FrameKind { return FrameAcceptedPlayer }

func (m AcceptedPlayer) WriteTo(w io.Writer) error {
	if err := WriteU8(w, uint8(FrameAcceptedPlayer)); err != nil {
		return err
	}
	if err := WritePlayerId(w, m.Id); err != nil {
		return err
	}
	return WritePlayer(w, m.Player)
}

func readAcceptedPlayer(r io.Reader) (Frame, error) {
	id, err := ReadPlayerId(r)
	if err != nil {
		return nil, err
	}
	player, err := ReadPlayer(r)
	if err != nil {
		return nil, err
	}
	return AcceptedPlayer{Id: id, Player: player}, nil
}

// GameStarted announces the lobby→game transition with the final roster.
type GameStarted struct {
	Players map[PlayerId]Player
}

func (GameStarted) Kind() FrameKind { return FrameGameStarted }

func (m GameStarted) WriteTo(w io.Writer) error {
	if err := WriteU8(w, uint8(FrameGameStarted)); err != nil {
		return err
	}
	return WriteMap(w, m.Players, WritePlayerId, WritePlayer)
}

func readGameStarted(r io.Reader) (Frame, error) {
	players, err := ReadMap(r, ReadPlayerId, ReadPlayer)
	if err != nil {
		return nil, err
	}
	return GameStarted{Players: players}, nil
}

// Turn carries one tick's worth of events, fenced by its turn index.
type Turn struct {
	Turn   uint16
	Events []Event
}

func (Turn) Kind() FrameKind { return FrameTurn }

func (m Turn) WriteTo(w io.Writer) error {
	if err := WriteU8(w, uint8(FrameTurn)); err != nil {
		return err
	}
	if err := WriteU16(w, m.Turn); err != nil {
		return err
	}
	return WriteEventList(w, m.Events)
}

func readTurn(r io.Reader) (Frame, error) {
	turn, err := ReadU16(r)
	if err != nil {
		return nil, err
	}
	events, err := ReadEventList(r)
	if err != nil {
		return nil, err
	}
	return Turn{Turn: turn, Events: events}, nil
}

// GameEnded announces the game→lobby transition with final scores.
type GameEnded struct {
	Scores map[PlayerId]Score
}

func (GameEnded) Kind() FrameKind { return FrameGameEnded }

func (m GameEnded) WriteTo(w io.Writer) error {
	if err := WriteU8(w, uint8(FrameGameEnded)); err != nil {
		return err
	}
	return WriteMap(w, m.Scores, WritePlayerId, WriteScore)
}

func readGameEnded(r io.Reader) (Frame, error) {
	scores, err := ReadMap(r, ReadPlayerId, ReadScore)
	if err != nil {
		return nil, err
	}
	return GameEnded{Scores: scores}, nil
}

// ReadFrame reads one tagged Frame from r. An unrecognized tag is a
// *ProtocolError, fatal to the connection.
func ReadFrame(r io.Reader) (Frame, error) {
	tag, err := ReadU8(r)
	if err != nil {
		return nil, err
	}
	switch FrameKind(tag) {
	case FrameHello:
		return readHello(r)
	case FrameAcceptedPlayer:
		return readAcceptedPlayer(r)
	case FrameGameStarted:
		return readGameStarted(r)
	case FrameTurn:
		return readTurn(r)
	case FrameGameEnded:
		return readGameEnded(r)
	default:
		return nil, &ProtocolError{Msg: fmt.Sprintf("unrecognized server message tag %d", tag)}
	}
}
