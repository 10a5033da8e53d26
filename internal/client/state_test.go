package client_test

import (
	"testing"

	"github.com/matryer/is"
	"github.com/msulimowicz/robots/internal/client"
	"github.com/msulimowicz/robots/internal/wire"
)

// GameSnapshot must flatten Blocks, Bombs and Explosions in a canonical
// order, independent of Go's randomized map iteration, so two clients
// (or two successive calls on the same client) observing identical
// state produce byte-identical snapshots.
func TestGameSnapshotOrdersSetsDeterministically(t *testing.T) {
	is := is.New(t)

	state := client.NewState("alice")
	state.Blocks[wire.Position{X: 3, Y: 1}] = struct{}{}
	state.Blocks[wire.Position{X: 1, Y: 5}] = struct{}{}
	state.Blocks[wire.Position{X: 1, Y: 2}] = struct{}{}

	state.Explosions[wire.Position{X: 9, Y: 0}] = struct{}{}
	state.Explosions[wire.Position{X: 0, Y: 9}] = struct{}{}
	state.Explosions[wire.Position{X: 0, Y: 1}] = struct{}{}

	state.Bombs[wire.BombId(5)] = wire.Bomb{Position: wire.Position{X: 1, Y: 1}, Timer: 1}
	state.Bombs[wire.BombId(1)] = wire.Bomb{Position: wire.Position{X: 2, Y: 2}, Timer: 2}
	state.Bombs[wire.BombId(3)] = wire.Bomb{Position: wire.Position{X: 3, Y: 3}, Timer: 3}

	state.Lock()
	snapshot := state.GameSnapshot()
	state.Unlock()

	is.Equal(snapshot.Blocks, []wire.Position{
		{X: 1, Y: 2},
		{X: 1, Y: 5},
		{X: 3, Y: 1},
	})
	is.Equal(snapshot.Explosions, []wire.Position{
		{X: 0, Y: 1},
		{X: 0, Y: 9},
		{X: 9, Y: 0},
	})
	is.Equal(snapshot.Bombs, []wire.Bomb{
		{Position: wire.Position{X: 2, Y: 2}, Timer: 2},
		{Position: wire.Position{X: 3, Y: 3}, Timer: 3},
		{Position: wire.Position{X: 1, Y: 1}, Timer: 1},
	})

	state.Lock()
	again := state.GameSnapshot()
	state.Unlock()
	is.Equal(snapshot.Blocks, again.Blocks)
	is.Equal(snapshot.Bombs, again.Bombs)
	is.Equal(snapshot.Explosions, again.Explosions)
}
