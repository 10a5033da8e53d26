package client

import (
	"fmt"

	"github.com/msulimowicz/robots/internal/wire"
)

// ServerHandler reads frames from the game server, applies them to
// State, and forwards a derived snapshot to the GUI on every
// state-changing frame.
type ServerHandler struct {
	server *ServerLink
	gui    *GUILink
	state  *State
}

func NewServerHandler(server *ServerLink, gui *GUILink, state *State) *ServerHandler {
	return &ServerHandler{server: server, gui: gui, state: state}
}

// Run blocks forever, applying one server frame per iteration. It
// returns on the first fatal error (EOF or malformed frame); the
// caller is expected to exit the process.
func (h *ServerHandler) Run() error {
	for {
		if err := h.handleOne(); err != nil {
			return err
		}
	}
}

func (h *ServerHandler) handleOne() error {
	frame, err := h.server.ReadFrame()
	if err != nil {
		return fmt.Errorf("server link closed: %w", err)
	}

	snapshot, ok := h.Apply(frame)
	if !ok {
		return nil
	}
	return h.gui.SendSnapshot(snapshot)
}

// Apply mutates state according to frame and reports the snapshot to
// publish, if any (GameStarted produces no snapshot; the first Turn
// that follows does). Safe to call independently of Run, e.g. from a
// test driving frames without a real GUILink.
func (h *ServerHandler) Apply(frame wire.Frame) (wire.GUIOutMsg, bool) {
	h.state.Lock()
	defer h.state.Unlock()

	switch m := frame.(type) {
	case wire.Hello:
		h.applyHello(m)
		return h.state.LobbySnapshot(), true
	case wire.AcceptedPlayer:
		h.applyAcceptedPlayer(m)
		return h.state.LobbySnapshot(), true
	case wire.GameStarted:
		h.applyGameStarted(m)
		return nil, false
	case wire.Turn:
		h.applyTurn(m)
		return h.state.GameSnapshot(), true
	case wire.GameEnded:
		h.applyGameEnded(m)
		return h.state.LobbySnapshot(), true
	default:
		return nil, false
	}
}

func (h *ServerHandler) applyHello(m wire.Hello) {
	s := h.state
	s.ServerName = m.ServerName
	s.PlayersCount = m.PlayersCount
	s.SizeX = m.SizeX
	s.SizeY = m.SizeY
	s.GameLength = m.GameLength
	s.ExplosionRadius = m.ExplosionRadius
	s.BombTimer = m.BombTimer
}

func (h *ServerHandler) applyAcceptedPlayer(m wire.AcceptedPlayer) {
	h.state.Players[m.Id] = m.Player
}

func (h *ServerHandler) applyGameStarted(m wire.GameStarted) {
	s := h.state
	s.Scores = make(map[wire.PlayerId]wire.Score)
	s.Blocks = make(map[wire.Position]struct{})
	s.Bombs = make(map[wire.BombId]wire.Bomb)
	s.Explosions = make(map[wire.Position]struct{})

	s.IsLobby = false
	s.Players = m.Players

	for id := range m.Players {
		s.Scores[id] = 0
	}
}

func (h *ServerHandler) applyTurn(m wire.Turn) {
	s := h.state
	s.Turn = m.Turn
	s.Explosions = make(map[wire.Position]struct{})
	s.blocksDestroyedInTurn = make(map[wire.Position]struct{})
	s.robotsDestroyedInTurn = make(map[wire.PlayerId]struct{})

	for id, bomb := range s.Bombs {
		bomb.Timer--
		s.Bombs[id] = bomb
	}

	for _, ev := range m.Events {
		switch e := ev.(type) {
		case wire.BombPlaced:
			s.Bombs[e.Id] = wire.Bomb{Position: e.Position, Timer: s.BombTimer}
		case wire.BombExploded:
			h.applyBombExploded(e)
		case wire.PlayerMoved:
			if s.PlayerPositions == nil {
				s.PlayerPositions = make(map[wire.PlayerId]wire.Position)
			}
			s.PlayerPositions[e.Id] = e.Position
		case wire.BlockPlaced:
			s.Blocks[e.Position] = struct{}{}
		}
	}

	for id := range s.robotsDestroyedInTurn {
		s.Scores[id]++
	}
	for pos := range s.blocksDestroyedInTurn {
		delete(s.Blocks, pos)
	}
}

func (h *ServerHandler) applyBombExploded(e wire.BombExploded) {
	s := h.state

	if bomb, ok := s.Bombs[e.Id]; ok {
		s.calcExplosion(bomb.Position)
	}

	for _, pos := range e.BlocksDestroyed {
		s.blocksDestroyedInTurn[pos] = struct{}{}
	}
	for _, id := range e.RobotsDestroyed {
		s.robotsDestroyedInTurn[id] = struct{}{}
		delete(s.PlayerPositions, id)
	}
	delete(s.Bombs, e.Id)
}

func (h *ServerHandler) applyGameEnded(m wire.GameEnded) {
	s := h.state
	s.IsLobby = true
	s.Scores = m.Scores
	s.Players = make(map[wire.PlayerId]wire.Player)
	s.Blocks = make(map[wire.Position]struct{})
	s.Bombs = make(map[wire.BombId]wire.Bomb)
	s.Explosions = make(map[wire.Position]struct{})
}
