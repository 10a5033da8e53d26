package client

import (
	"slices"
	"sync"

	"github.com/msulimowicz/robots/internal/wire"
)

// State is the client's derived view of the game, rebuilt from the
// server's event stream. A single mutex protects it for the full
// duration of applying one server frame or one GUI datagram, so a
// Join cannot race a GameStarted.
type State struct {
	mu sync.Mutex

	PlayerName string

	ServerName      string
	PlayersCount    uint8
	SizeX           uint16
	SizeY           uint16
	GameLength      uint16
	ExplosionRadius uint16
	BombTimer       uint16

	IsLobby bool
	Turn    uint16

	Players         map[wire.PlayerId]wire.Player
	PlayerPositions map[wire.PlayerId]wire.Position
	Blocks          map[wire.Position]struct{}
	Bombs           map[wire.BombId]wire.Bomb
	Explosions      map[wire.Position]struct{}
	Scores          map[wire.PlayerId]wire.Score

	robotsDestroyedInTurn map[wire.PlayerId]struct{}
	blocksDestroyedInTurn map[wire.Position]struct{}
}

// NewState builds a client in the lobby phase with empty views.
func NewState(playerName string) *State {
	return &State{
		PlayerName: playerName,
		IsLobby:    true,
		Players:    make(map[wire.PlayerId]wire.Player),
		Scores:     make(map[wire.PlayerId]wire.Score),
		Blocks:     make(map[wire.Position]struct{}),
		Bombs:      make(map[wire.BombId]wire.Bomb),
		Explosions: make(map[wire.Position]struct{}),
	}
}

// Lock acquires the state lock for the duration of processing one
// server frame or one GUI datagram.
func (s *State) Lock()   { s.mu.Lock() }
func (s *State) Unlock() { s.mu.Unlock() }

// LobbySnapshot renders the current state as a wire.LobbySnapshot.
// Callers must hold the lock.
func (s *State) LobbySnapshot() wire.LobbySnapshot {
	players := make(map[wire.PlayerId]wire.Player, len(s.Players))
	for id, p := range s.Players {
		players[id] = p
	}
	return wire.LobbySnapshot{
		ServerName:      s.ServerName,
		PlayersCount:    s.PlayersCount,
		SizeX:           s.SizeX,
		SizeY:           s.SizeY,
		GameLength:      s.GameLength,
		ExplosionRadius: s.ExplosionRadius,
		BombTimer:       s.BombTimer,
		Players:         players,
	}
}

// GameSnapshot renders the current state as a wire.GameSnapshot.
// Callers must hold the lock.
func (s *State) GameSnapshot() wire.GameSnapshot {
	players := make(map[wire.PlayerId]wire.Player, len(s.Players))
	for id, p := range s.Players {
		players[id] = p
	}
	positions := make(map[wire.PlayerId]wire.Position, len(s.PlayerPositions))
	for id, p := range s.PlayerPositions {
		positions[id] = p
	}
	blocks := make([]wire.Position, 0, len(s.Blocks))
	for p := range s.Blocks {
		blocks = append(blocks, p)
	}
	sortPositions(blocks)

	bombIDs := make([]wire.BombId, 0, len(s.Bombs))
	for id := range s.Bombs {
		bombIDs = append(bombIDs, id)
	}
	slices.Sort(bombIDs)
	bombs := make([]wire.Bomb, 0, len(s.Bombs))
	for _, id := range bombIDs {
		bombs = append(bombs, s.Bombs[id])
	}

	explosions := make([]wire.Position, 0, len(s.Explosions))
	for p := range s.Explosions {
		explosions = append(explosions, p)
	}
	sortPositions(explosions)
	scores := make(map[wire.PlayerId]wire.Score, len(s.Scores))
	for id, sc := range s.Scores {
		scores[id] = sc
	}
	return wire.GameSnapshot{
		ServerName:      s.ServerName,
		SizeX:           s.SizeX,
		SizeY:           s.SizeY,
		GameLength:      s.GameLength,
		Turn:            s.Turn,
		Players:         players,
		PlayerPositions: positions,
		Blocks:          blocks,
		Bombs:           bombs,
		Explosions:      explosions,
		Scores:          scores,
	}
}

// sortPositions orders positions lexicographically by (X, Y), matching
// the ascending order a std::set<Position> would iterate in and keeping
// repeated snapshots of the same state byte-identical on the wire.
func sortPositions(positions []wire.Position) {
	slices.SortFunc(positions, func(a, b wire.Position) int {
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})
}
