package server

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/msulimowicz/robots/internal/wire"
	"github.com/phuslu/log"
)

// gameState is the authoritative game state for one session, owned
// exclusively by the game manager goroutine during a turn.
type gameState struct {
	bombs      map[wire.BombId]wire.Bomb
	blocks     map[wire.Position]struct{}
	playerPos  map[wire.PlayerId]wire.Position
	scores     map[wire.PlayerId]wire.Score
	nextBombID wire.BombId
}

func newGameState() *gameState {
	return &gameState{
		bombs:     make(map[wire.BombId]wire.Bomb),
		blocks:    make(map[wire.Position]struct{}),
		playerPos: make(map[wire.PlayerId]wire.Position),
		scores:    make(map[wire.PlayerId]wire.Score),
	}
}

// GameManager drives the lobby→game→lobby cycle on a single goroutine,
// advancing turns at a fixed cadence and producing the canonical event
// stream broadcast through State.
type GameManager struct {
	params Params
	state  *State
	rng    *Source
	logger *log.Logger
}

func NewGameManager(params Params, state *State, logger *log.Logger) *GameManager {
	return &GameManager{
		params: params,
		state:  state,
		rng:    NewSource(params.Seed),
		logger: logger,
	}
}

// Run loops forever, one session per iteration, until ctx is cancelled.
// Cancellation is observed between sessions and while waiting out a
// turn; a manager blocked in the lobby waiting for players does not
// return until that wait ends.
func (gm *GameManager) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		players := gm.state.WaitForPlayersToStartGame()
		state := newGameState()

		initialEvents := gm.initializeGame(players, state)
		gm.closeTurn(0, initialEvents)

		for turn := uint16(1); turn <= gm.params.GameLength; turn++ {
			select {
			case <-ctx.Done():
				return
			case <-time.After(gm.params.TurnDuration):
			}

			events := gm.playTurn(players, state)
			gm.closeTurn(turn, events)
		}

		if err := gm.state.EndGame(state.scores); err != nil {
			gm.logger.Warn().Msgf("broadcasting game end: %v", err)
		}
	}
}

func (gm *GameManager) closeTurn(turnID uint16, events []wire.Event) {
	if err := gm.state.CloseTurn(turnID, events); err != nil {
		gm.logger.Warn().Msgf("broadcasting turn %d: %v", turnID, err)
	}
}

func (gm *GameManager) initializeGame(players map[wire.PlayerId]wire.Player, state *gameState) []wire.Event {
	events := []wire.Event{}

	gm.resetScores(players, state)
	events = gm.placeMissingRobots(players, state, events)
	events = gm.placeInitialBlocks(state, events)

	return events
}

// resetScores zeroes every admitted player's score. Mirrors the
// original's per-player loop, which re-clears the whole map on each
// iteration; harmless since it still ends with every player at zero.
func (gm *GameManager) resetScores(players map[wire.PlayerId]wire.Player, state *gameState) {
	for playerID := range players {
		state.scores = make(map[wire.PlayerId]wire.Score)
		state.scores[playerID] = 0
	}
}

func (gm *GameManager) placeMissingRobots(
	players map[wire.PlayerId]wire.Player,
	state *gameState,
	events []wire.Event,
) []wire.Event {
	for _, playerID := range sortedPlayerIDs(players) {
		if _, alive := state.playerPos[playerID]; alive {
			continue
		}
		pos := wire.Position{X: gm.rng.Intn(gm.params.SizeX), Y: gm.rng.Intn(gm.params.SizeY)}
		state.playerPos[playerID] = pos
		events = append(events, wire.PlayerMoved{Id: playerID, Position: pos})
	}
	return events
}

func (gm *GameManager) placeInitialBlocks(state *gameState, events []wire.Event) []wire.Event {
	for i := uint16(0); i < gm.params.InitialBlocks; i++ {
		pos := wire.Position{X: gm.rng.Intn(gm.params.SizeX), Y: gm.rng.Intn(gm.params.SizeY)}
		state.blocks[pos] = struct{}{}
		events = append(events, wire.BlockPlaced{Position: pos})
	}
	return events
}

func (gm *GameManager) playTurn(players map[wire.PlayerId]wire.Player, state *gameState) []wire.Event {
	events := []wire.Event{}

	messages := gm.state.CollectLastMessages()

	events = gm.updateBombs(state, events)
	events = gm.interpretAllClientMessages(messages, state, events)
	events = gm.placeMissingRobots(players, state, events)

	return events
}

// interpretAllClientMessages applies each player's latest intent, in
// ascending PlayerId order, but only for players whose robot survived
// this turn's detonations.
func (gm *GameManager) interpretAllClientMessages(
	messages map[wire.PlayerId]wire.ClientMsg,
	state *gameState,
	events []wire.Event,
) []wire.Event {
	playerIDs := make([]wire.PlayerId, 0, len(messages))
	for playerID := range messages {
		playerIDs = append(playerIDs, playerID)
	}
	slices.Sort(playerIDs)

	for _, playerID := range playerIDs {
		if _, alive := state.playerPos[playerID]; !alive {
			continue
		}
		switch msg := messages[playerID].(type) {
		case wire.Join:
			// Ignore: a Join received mid-game is a no-op.
		case wire.PlaceBomb:
			events = gm.interpretPlaceBomb(playerID, state, events)
		case wire.PlaceBlock:
			events = gm.interpretPlaceBlock(playerID, state, events)
		case wire.Move:
			events = gm.interpretMove(playerID, msg, state, events)
		}
	}
	return events
}

func (gm *GameManager) interpretPlaceBomb(playerID wire.PlayerId, state *gameState, events []wire.Event) []wire.Event {
	pos := state.playerPos[playerID]
	id := state.nextBombID
	state.bombs[id] = wire.Bomb{Position: pos, Timer: gm.params.BombTimer}
	state.nextBombID++
	return append(events, wire.BombPlaced{Id: id, Position: pos})
}

func (gm *GameManager) interpretPlaceBlock(playerID wire.PlayerId, state *gameState, events []wire.Event) []wire.Event {
	pos := state.playerPos[playerID]
	if _, present := state.blocks[pos]; present {
		return events
	}
	state.blocks[pos] = struct{}{}
	return append(events, wire.BlockPlaced{Position: pos})
}

func (gm *GameManager) interpretMove(playerID wire.PlayerId, msg wire.Move, state *gameState, events []wire.Event) []wire.Event {
	pos := state.playerPos[playerID]
	dx, dy := msg.Direction.Delta()
	newX := int(pos.X) + dx
	newY := int(pos.Y) + dy

	if newX < 0 || newX >= int(gm.params.SizeX) || newY < 0 || newY >= int(gm.params.SizeY) {
		return events
	}
	newPos := wire.Position{X: uint16(newX), Y: uint16(newY)}
	if _, blocked := state.blocks[newPos]; blocked {
		return events
	}

	state.playerPos[playerID] = newPos
	return append(events, wire.PlayerMoved{Id: playerID, Position: newPos})
}

// updateBombs detonates every bomb whose timer has reached 1, against
// the current block set and player positions, and decrements the
// timers of the rest. Destruction is applied only after every
// BombExploded event has been appended, so the events reflect
// pre-destruction state.
func (gm *GameManager) updateBombs(state *gameState, events []wire.Event) []wire.Event {
	robotsDestroyedTotal := make(map[wire.PlayerId]struct{})
	blocksDestroyedTotal := make(map[wire.Position]struct{})
	var bombsExploded []wire.BombId

	for _, bombID := range sortedBombIDs(state.bombs) {
		bomb := state.bombs[bombID]
		if bomb.Timer > 1 {
			bomb.Timer--
			state.bombs[bombID] = bomb
			continue
		}

		affected := explode(bomb.Position, gm.params.ExplosionRadius, gm.params.SizeX, gm.params.SizeY, state.blocks)
		robots := destroyedRobots(affected, state.playerPos)
		blocks := destroyedBlocks(affected, state.blocks)

		for id := range robots {
			robotsDestroyedTotal[id] = struct{}{}
		}
		for pos := range blocks {
			blocksDestroyedTotal[pos] = struct{}{}
		}
		bombsExploded = append(bombsExploded, bombID)

		events = append(events, wire.BombExploded{
			Id:              bombID,
			RobotsDestroyed: sortedPlayerIDSet(robots),
			BlocksDestroyed: sortedPositionSet(blocks),
		})
	}

	for id := range robotsDestroyedTotal {
		state.scores[id]++
		delete(state.playerPos, id)
	}
	for pos := range blocksDestroyedTotal {
		delete(state.blocks, pos)
	}
	for _, id := range bombsExploded {
		delete(state.bombs, id)
	}

	return events
}

func sortedPlayerIDs(players map[wire.PlayerId]wire.Player) []wire.PlayerId {
	ids := make([]wire.PlayerId, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func sortedPlayerIDSet(set map[wire.PlayerId]struct{}) []wire.PlayerId {
	ids := make([]wire.PlayerId, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func sortedPositionSet(set map[wire.Position]struct{}) []wire.Position {
	positions := make([]wire.Position, 0, len(set))
	for pos := range set {
		positions = append(positions, pos)
	}
	slices.SortFunc(positions, func(a, b wire.Position) int {
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})
	return positions
}

func sortedBombIDs(bombs map[wire.BombId]wire.Bomb) []wire.BombId {
	ids := make([]wire.BombId, 0, len(bombs))
	for id := range bombs {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b wire.BombId) int { return cmp.Compare(a, b) })
	return ids
}
