package server

import "time"

// Params are the fixed game parameters for one server run, sourced from
// CLI flags at startup and never mutated afterward.
type Params struct {
	BombTimer       uint16
	PlayersCount    uint8
	TurnDuration    time.Duration
	ExplosionRadius uint16
	InitialBlocks   uint16
	GameLength      uint16
	ServerName      string
	Port            uint16
	Seed            uint32
	SizeX           uint16
	SizeY           uint16
}
