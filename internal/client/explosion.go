package client

import "github.com/msulimowicz/robots/internal/wire"

var explosionDX = [4]int{1, -1, 0, 0}
var explosionDY = [4]int{0, 0, 1, -1}

// calcExplosion recomputes the blast cross locally, the same cross the
// server used to decide BombExploded.robots_destroyed/blocks_destroyed,
// so the GUI's highlighted cells don't depend on the server having
// enumerated every affected cell.
func (s *State) calcExplosion(bombPos wire.Position) {
	for arm := 0; arm < 4; arm++ {
		for r := 0; r <= int(s.ExplosionRadius); r++ {
			x := int(bombPos.X) + explosionDX[arm]*r
			y := int(bombPos.Y) + explosionDY[arm]*r

			if x < 0 || x >= int(s.SizeX) || y < 0 || y >= int(s.SizeY) {
				break
			}

			pos := wire.Position{X: uint16(x), Y: uint16(y)}
			s.Explosions[pos] = struct{}{}

			if _, blocked := s.Blocks[pos]; blocked {
				break
			}
		}
	}
}
