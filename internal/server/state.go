package server

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/msulimowicz/robots/internal/debug"
	"github.com/msulimowicz/robots/internal/wire"
)

// ClientID identifies a TCP connection, assigned sequentially by the
// acceptor. It is distinct from PlayerId: not every client becomes a
// player, and a client keeps its ClientID for the lifetime of the
// connection even across a lobby→game→lobby cycle.
type ClientID uint64

// State is the server-wide shared mutable state: the lobby roster,
// client↔player mapping, per-client outbound queues, the latest intent
// per client this turn, and the replay history. Every field is guarded
// by mu; the single condition variable wakes the game manager once
// enough players have joined.
type State struct {
	mu            sync.Mutex
	playersJoined *sync.Cond

	params Params

	players             map[wire.PlayerId]wire.Player
	playerIDsByClient   map[ClientID]wire.PlayerId
	queues              map[ClientID]*BlockingQueue[wire.Frame]
	lastMessageByClient map[ClientID]wire.ClientMsg
	nextClientID        ClientID

	isLobby bool
	history []wire.Frame
}

// NewState builds server state in the lobby phase, with history seeded
// by the canonical Hello derived from params.
func NewState(params Params) *State {
	s := &State{
		params:              params,
		players:             make(map[wire.PlayerId]wire.Player),
		playerIDsByClient:   make(map[ClientID]wire.PlayerId),
		queues:              make(map[ClientID]*BlockingQueue[wire.Frame]),
		lastMessageByClient: make(map[ClientID]wire.ClientMsg),
		isLobby:             true,
	}
	s.playersJoined = sync.NewCond(&s.mu)
	s.resetHistory()
	return s
}

func (s *State) helloFrame() wire.Frame {
	return wire.Hello{
		ServerName:      s.params.ServerName,
		PlayersCount:    s.params.PlayersCount,
		SizeX:           s.params.SizeX,
		SizeY:           s.params.SizeY,
		GameLength:      s.params.GameLength,
		ExplosionRadius: s.params.ExplosionRadius,
		BombTimer:       s.params.BombTimer,
	}
}

// resetHistory replaces history with just the canonical Hello. Callers
// must hold mu.
func (s *State) resetHistory() {
	s.history = []wire.Frame{s.helloFrame()}
}

// AcceptClient assigns the next sequential ClientID to a freshly
// accepted connection.
func (s *State) AcceptClient() ClientID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextClientID
	s.nextClientID++
	return id
}

// CreateQueue builds this client's outbound queue, seeded with a replay
// of the current history so a late joiner starts exactly where an early
// joiner would have.
func (s *State) CreateQueue(id ClientID) *BlockingQueue[wire.Frame] {
	s.mu.Lock()
	defer s.mu.Unlock()

	debug.Assert(s.queues[id] == nil, "queue already exists for client")
	q := NewBlockingQueue(s.history)
	s.queues[id] = q
	return q
}

// EraseClient removes every table entry belonging to id: its player
// entry (if any), its outbound queue, and its pending intent. Called
// once a client's reader or writer fails.
func (s *State) EraseClient(id ClientID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if playerID, ok := s.playerIDsByClient[id]; ok {
		delete(s.players, playerID)
		delete(s.playerIDsByClient, id)
	}
	if q, ok := s.queues[id]; ok {
		q.Close()
		delete(s.queues, id)
	}
	delete(s.lastMessageByClient, id)
}

// SetLastMessage records msg as id's latest intent for the current
// turn, overwriting any earlier intent from the same client this turn.
func (s *State) SetLastMessage(id ClientID, msg wire.ClientMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastMessageByClient[id] = msg
}

// CollectLastMessages drains the per-client intent table into a
// per-player map and clears it, atomically.
func (s *State) CollectLastMessages() map[wire.PlayerId]wire.ClientMsg {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make(map[wire.PlayerId]wire.ClientMsg, len(s.lastMessageByClient))
	for clientID, msg := range s.lastMessageByClient {
		if playerID, ok := s.playerIDsByClient[clientID]; ok {
			messages[playerID] = msg
		}
	}
	s.lastMessageByClient = make(map[ClientID]wire.ClientMsg)
	return messages
}

// TryAcceptPlayer admits a Join if the session is in lobby phase, this
// client has not already been admitted, and there's still room. Any
// other case is ignored silently, matching the original's defensive
// no-op arm.
func (s *State) TryAcceptPlayer(id ClientID, name, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isLobby {
		return nil
	}
	if _, ok := s.playerIDsByClient[id]; ok {
		return nil
	}
	if len(s.players) >= int(s.params.PlayersCount) {
		return nil
	}

	playerID := wire.PlayerId(len(s.players))
	player := wire.Player{Name: name, Address: address}

	s.playerIDsByClient[id] = playerID
	s.players[playerID] = player

	err := s.broadcast(wire.AcceptedPlayer{Id: playerID, Player: player})
	s.playersJoined.Broadcast()
	return err
}

// WaitForPlayersToStartGame blocks until exactly PlayersCount players
// have been admitted, then transitions the session to game phase and
// returns the final roster. History keeps the lobby's Hello and
// AcceptedPlayer frames, so a client connecting mid-game replays them
// before GameStarted.
func (s *State) WaitForPlayersToStartGame() map[wire.PlayerId]wire.Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.players) != int(s.params.PlayersCount) {
		s.playersJoined.Wait()
	}

	s.isLobby = false
	s.lastMessageByClient = make(map[ClientID]wire.ClientMsg)

	players := make(map[wire.PlayerId]wire.Player, len(s.players))
	for id, p := range s.players {
		players[id] = p
	}
	// GameStarted is sent to every connected client, including
	// observers who never became players; a dropped queue here is not
	// fatal to the session, and the aggregated error is discarded.
	_ = s.broadcast(wire.GameStarted{Players: players})
	return players
}

// CloseTurn broadcasts the Turn frame for turnID. The returned error
// aggregates one entry per client whose queue was already closed when
// the frame was pushed.
func (s *State) CloseTurn(turnID uint16, events []wire.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broadcast(wire.Turn{Turn: turnID, Events: events})
}

// EndGame broadcasts GameEnded and returns the session to lobby phase,
// reseeding history with the canonical Hello.
func (s *State) EndGame(scores map[wire.PlayerId]wire.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.broadcast(wire.GameEnded{Scores: scores})

	s.isLobby = true
	s.players = make(map[wire.PlayerId]wire.Player)
	s.playerIDsByClient = make(map[ClientID]wire.PlayerId)
	s.lastMessageByClient = make(map[ClientID]wire.ClientMsg)
	s.resetHistory()

	return err
}

// broadcast appends frame to history and pushes it to every open
// client queue, aggregating one error per client whose queue had
// already closed by the time the frame went out. Callers must hold
// mu.
func (s *State) broadcast(frame wire.Frame) error {
	s.history = append(s.history, frame)

	var result *multierror.Error
	for id, q := range s.queues {
		if !q.IsOpen() {
			result = multierror.Append(result, fmt.Errorf("client %d: queue closed, dropped %T", id, frame))
			continue
		}
		q.Push(frame)
	}
	return result.ErrorOrNil()
}
