package client_test

import (
	"testing"

	"github.com/matryer/is"
	"github.com/msulimowicz/robots/internal/client"
	"github.com/msulimowicz/robots/internal/wire"
)

func newTestHandler(state *client.State) *client.ServerHandler {
	return client.NewServerHandler(nil, nil, state)
}

func TestHelloPopulatesParamsAndStaysInLobby(t *testing.T) {
	is := is.New(t)

	state := client.NewState("alice")
	h := newTestHandler(state)
	h.Apply(wire.Hello{
		ServerName:      "s",
		PlayersCount:    2,
		SizeX:           8,
		SizeY:           8,
		GameLength:      10,
		ExplosionRadius: 1,
		BombTimer:       3,
	})

	is.Equal(state.ServerName, "s")
	is.Equal(state.IsLobby, true)
}

func TestGameStartedInitializesScoresAndClearsLobbyFlag(t *testing.T) {
	is := is.New(t)

	state := client.NewState("alice")
	h := newTestHandler(state)
	players := map[wire.PlayerId]wire.Player{
		0: {Name: "alice", Address: "a"},
		1: {Name: "bob", Address: "b"},
	}
	h.Apply(wire.GameStarted{Players: players})

	is.Equal(state.IsLobby, false)
	is.Equal(len(state.Scores), 2)
	is.Equal(state.Scores[0], wire.Score(0))
	is.Equal(state.Scores[1], wire.Score(0))
}

func TestBombExplodedDestroysRobotAndIncrementsScoreNextTurn(t *testing.T) {
	is := is.New(t)

	state := client.NewState("alice")
	h := newTestHandler(state)
	h.Apply(wire.GameStarted{
		Players: map[wire.PlayerId]wire.Player{0: {Name: "a", Address: "x"}},
	})
	state.ExplosionRadius = 1
	state.SizeX = 4
	state.SizeY = 4
	state.PlayerPositions = map[wire.PlayerId]wire.Position{0: {X: 1, Y: 1}}

	turn := wire.Turn{
		Turn: 1,
		Events: []wire.Event{
			wire.BombPlaced{Id: 0, Position: wire.Position{X: 1, Y: 1}},
		},
	}
	h.Apply(turn)
	is.Equal(len(state.Bombs), 1)

	turn2 := wire.Turn{
		Turn: 2,
		Events: []wire.Event{
			wire.BombExploded{
				Id:              0,
				RobotsDestroyed: []wire.PlayerId{0},
				BlocksDestroyed: []wire.Position{},
			},
		},
	}
	h.Apply(turn2)

	_, alive := state.PlayerPositions[0]
	is.True(!alive)
	is.Equal(state.Scores[0], wire.Score(1))
	is.Equal(len(state.Bombs), 0)
	is.True(len(state.Explosions) > 0)
}

func TestGameEndedReturnsToLobby(t *testing.T) {
	is := is.New(t)

	state := client.NewState("alice")
	h := newTestHandler(state)
	h.Apply(wire.GameStarted{
		Players: map[wire.PlayerId]wire.Player{0: {Name: "a", Address: "x"}},
	})
	h.Apply(wire.GameEnded{Scores: map[wire.PlayerId]wire.Score{0: 2}})

	is.Equal(state.IsLobby, true)
	is.Equal(state.Scores[0], wire.Score(2))
	is.Equal(len(state.Players), 0)
}
