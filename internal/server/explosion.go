package server

import "github.com/msulimowicz/robots/internal/wire"

// cardinal arm deltas, matching the original's dx/dy tables.
var explosionDX = [4]int{1, -1, 0, 0}
var explosionDY = [4]int{0, 0, 1, -1}

// explode computes the cross-shaped blast from a bomb at pos: for each
// of the four cardinal arms, step outward from radius 0 to radius
// inclusive, stopping at the board edge (excluding the out-of-bounds
// cell) or just after absorbing into a block.
func explode(pos wire.Position, radius, sizeX, sizeY uint16, blocks map[wire.Position]struct{}) map[wire.Position]struct{} {
	affected := make(map[wire.Position]struct{})

	for arm := 0; arm < 4; arm++ {
		for r := 0; r <= int(radius); r++ {
			x := int(pos.X) + explosionDX[arm]*r
			y := int(pos.Y) + explosionDY[arm]*r

			if x < 0 || x >= int(sizeX) || y < 0 || y >= int(sizeY) {
				break
			}

			p := wire.Position{X: uint16(x), Y: uint16(y)}
			affected[p] = struct{}{}

			if _, blocked := blocks[p]; blocked {
				break
			}
		}
	}
	return affected
}

// destroyedRobots returns the players whose current position lies in
// affected.
func destroyedRobots(affected map[wire.Position]struct{}, positions map[wire.PlayerId]wire.Position) map[wire.PlayerId]struct{} {
	destroyed := make(map[wire.PlayerId]struct{})
	for playerID, pos := range positions {
		if _, hit := affected[pos]; hit {
			destroyed[playerID] = struct{}{}
		}
	}
	return destroyed
}

// destroyedBlocks returns the affected cells that currently hold a block.
func destroyedBlocks(affected map[wire.Position]struct{}, blocks map[wire.Position]struct{}) map[wire.Position]struct{} {
	destroyed := make(map[wire.Position]struct{})
	for pos := range affected {
		if _, present := blocks[pos]; present {
			destroyed[pos] = struct{}{}
		}
	}
	return destroyed
}
