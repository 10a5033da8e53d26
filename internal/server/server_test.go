package server_test

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/msulimowicz/robots/internal/server"
	"github.com/msulimowicz/robots/internal/wire"
	"github.com/phuslu/log"
)

func testLogger() *log.Logger {
	logger := log.DefaultLogger
	logger.Caller = 1
	logger.TimeFormat = "15:04:05"
	logger.Writer = &log.ConsoleWriter{
		ColorOutput:    true,
		QuoteString:    true,
		EndWithMessage: true,
	}
	return &logger
}

func startServer(t *testing.T, is *is.I, params server.Params) (*server.Server, func()) {
	t.Helper()

	srv, err := server.New(params, testLogger())
	is.NoErr(err)

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Run(ctx)

	return srv, cancel
}

func dial(t *testing.T, is *is.I, addr *net.TCPAddr) (net.Conn, *bufio.Reader) {
	t.Helper()

	conn, err := net.DialTCP("tcp", nil, addr)
	is.NoErr(err)
	t.Cleanup(func() { conn.Close() })
	return conn, bufio.NewReader(conn)
}

func readFrame(is *is.I, r *bufio.Reader) wire.Frame {
	frame, err := wire.ReadFrame(r)
	is.NoErr(err)
	return frame
}

func baseParams() server.Params {
	return server.Params{
		BombTimer:       2,
		PlayersCount:    1,
		TurnDuration:    5 * time.Millisecond,
		ExplosionRadius: 1,
		InitialBlocks:   2,
		GameLength:      3,
		ServerName:      "test",
		Port:            0,
		Seed:            42,
		SizeX:           4,
		SizeY:           4,
	}
}

// Scenario 1: single player, deterministic seed. Turn 0 emits one
// PlayerMoved and two BlockPlaced; no further moves since the robot is
// never destroyed; final score is zero.
func TestSinglePlayerDeterministicSeed(t *testing.T) {
	is := is.New(t)

	srv, cancel := startServer(t, is, baseParams())
	defer cancel()

	conn, reader := dial(t, is, srv.Addr())

	is.NoErr(wire.Join{Name: "alice"}.WriteTo(conn))

	hello := readFrame(is, reader)
	is.Equal(hello.(wire.Hello).ServerName, "test")

	accepted := readFrame(is, reader)
	_, isAccepted := accepted.(wire.AcceptedPlayer)
	is.True(isAccepted)

	_, isStarted := readFrame(is, reader).(wire.GameStarted)
	is.True(isStarted)

	turn0 := readFrame(is, reader).(wire.Turn)
	is.Equal(turn0.Turn, uint16(0))

	moved := 0
	blocksPlaced := 0
	for _, ev := range turn0.Events {
		switch ev.(type) {
		case wire.PlayerMoved:
			moved++
		case wire.BlockPlaced:
			blocksPlaced++
		}
	}
	is.Equal(moved, 1)
	is.Equal(blocksPlaced, 2)

	for turn := uint16(1); turn <= 3; turn++ {
		tf := readFrame(is, reader).(wire.Turn)
		is.Equal(tf.Turn, turn)
		is.Equal(len(tf.Events), 0)
	}

	ended := readFrame(is, reader).(wire.GameEnded)
	is.Equal(ended.Scores[0], wire.Score(0))
}

// Scenario 4: three clients connect with players_count = 2; the third
// never becomes a player but still receives GameStarted and Turn
// frames.
func TestLobbyAdmissionExtraClientObserves(t *testing.T) {
	is := is.New(t)

	params := baseParams()
	params.PlayersCount = 2
	params.GameLength = 1
	srv, cancel := startServer(t, is, params)
	defer cancel()

	connA, readerA := dial(t, is, srv.Addr())
	connB, readerB := dial(t, is, srv.Addr())
	_, readerC := dial(t, is, srv.Addr())

	is.NoErr(wire.Join{Name: "a"}.WriteTo(connA))
	is.NoErr(wire.Join{Name: "b"}.WriteTo(connB))

	// A: Hello, AcceptedPlayer(A)
	readFrame(is, readerA)
	readFrame(is, readerA)
	// B: Hello, AcceptedPlayer(A), AcceptedPlayer(B)
	readFrame(is, readerB)
	readFrame(is, readerB)
	readFrame(is, readerB)
	// C: Hello, AcceptedPlayer(A), AcceptedPlayer(B)
	readFrame(is, readerC)
	readFrame(is, readerC)
	readFrame(is, readerC)

	_, ok := readFrame(is, readerC).(wire.GameStarted)
	is.True(ok)
	_, ok = readFrame(is, readerC).(wire.Turn)
	is.True(ok)
}

// Scenario 2: two players, radius 2, seed 42 on a 5x5 board spawns
// player 0 at (2,2) and player 1 at (2,0) (verified below). Player 0
// places a bomb at turn 1 and never moves; player 1 steps from (2,0)
// to (2,1), staying within the bomb's blast column. At turn 1+bomb_timer
// both robots are destroyed by the same bomb, both scores become 1,
// and both are respawned in the same turn's event list.
func TestTwoPlayerBombBlastDestroysBoth(t *testing.T) {
	is := is.New(t)

	params := baseParams()
	params.PlayersCount = 2
	params.ExplosionRadius = 2
	params.InitialBlocks = 0
	params.GameLength = 3
	params.SizeX = 5
	params.SizeY = 5
	srv, cancel := startServer(t, is, params)
	defer cancel()

	connA, readerA := dial(t, is, srv.Addr())
	connB, _ := dial(t, is, srv.Addr())

	// bob joins only after alice's admission is observed, so alice is
	// player 0 regardless of how the two readers are scheduled.
	is.NoErr(wire.Join{Name: "alice"}.WriteTo(connA))
	readFrame(is, readerA) // Hello
	readFrame(is, readerA) // AcceptedPlayer(alice)

	is.NoErr(wire.Join{Name: "bob"}.WriteTo(connB))
	readFrame(is, readerA) // AcceptedPlayer(bob)
	readFrame(is, readerA) // GameStarted

	turn0 := readFrame(is, readerA).(wire.Turn)
	is.Equal(turn0.Turn, uint16(0))
	is.Equal(len(turn0.Events), 2)
	spawn0 := turn0.Events[0].(wire.PlayerMoved)
	spawn1 := turn0.Events[1].(wire.PlayerMoved)
	is.Equal(spawn0.Id, wire.PlayerId(0))
	is.Equal(spawn0.Position, wire.Position{X: 2, Y: 2})
	is.Equal(spawn1.Id, wire.PlayerId(1))
	is.Equal(spawn1.Position, wire.Position{X: 2, Y: 0})

	is.NoErr(wire.PlaceBomb{}.WriteTo(connA))
	is.NoErr(wire.Move{Direction: wire.DirUp}.WriteTo(connB))

	turn1 := readFrame(is, readerA).(wire.Turn)
	is.Equal(turn1.Turn, uint16(1))
	bombPlaced := turn1.Events[0].(wire.BombPlaced)
	is.Equal(bombPlaced.Position, wire.Position{X: 2, Y: 2})
	moved := turn1.Events[1].(wire.PlayerMoved)
	is.Equal(moved.Id, wire.PlayerId(1))
	is.Equal(moved.Position, wire.Position{X: 2, Y: 1})

	turn2 := readFrame(is, readerA).(wire.Turn)
	is.Equal(turn2.Turn, uint16(2))
	is.Equal(len(turn2.Events), 0)

	turn3 := readFrame(is, readerA).(wire.Turn)
	is.Equal(turn3.Turn, uint16(3))
	exploded := turn3.Events[0].(wire.BombExploded)
	is.Equal(exploded.Id, bombPlaced.Id)
	is.Equal(exploded.RobotsDestroyed, []wire.PlayerId{0, 1})
	is.Equal(len(exploded.BlocksDestroyed), 0)

	respawn0 := turn3.Events[1].(wire.PlayerMoved)
	respawn1 := turn3.Events[2].(wire.PlayerMoved)
	is.Equal(respawn0.Id, wire.PlayerId(0))
	is.Equal(respawn1.Id, wire.PlayerId(1))

	ended := readFrame(is, readerA).(wire.GameEnded)
	is.Equal(ended.Scores[0], wire.Score(1))
	is.Equal(ended.Scores[1], wire.Score(1))
}

// Scenario 5: replay. A client that connects mid-game is backfilled
// with exactly Hello, every AcceptedPlayer, GameStarted, and every Turn
// broadcast so far, in order, before it sees anything new.
func TestReplayBackfillForLateObserver(t *testing.T) {
	is := is.New(t)

	params := baseParams()
	params.TurnDuration = 2 * time.Millisecond
	params.GameLength = 200
	srv, cancel := startServer(t, is, params)
	defer cancel()

	conn, _ := dial(t, is, srv.Addr())
	is.NoErr(wire.Join{Name: "alice"}.WriteTo(conn))

	// give the game manager time to close at least 5 turns before the
	// late observer connects.
	time.Sleep(60 * time.Millisecond)

	_, late := dial(t, is, srv.Addr())

	_, isHello := readFrame(is, late).(wire.Hello)
	is.True(isHello)
	_, isAccepted := readFrame(is, late).(wire.AcceptedPlayer)
	is.True(isAccepted)
	_, isStarted := readFrame(is, late).(wire.GameStarted)
	is.True(isStarted)

	for turn := uint16(0); turn <= 4; turn++ {
		tf := readFrame(is, late).(wire.Turn)
		is.Equal(tf.Turn, turn)
	}
}

// Scenario 6: move clamping at the board edge. A one-column board puts
// the robot at x=0, so a Move left is always out of bounds.
func TestMoveClampingAtBoardEdge(t *testing.T) {
	is := is.New(t)

	params := baseParams()
	params.GameLength = 2
	params.SizeX = 1
	srv, cancel := startServer(t, is, params)
	defer cancel()

	conn, reader := dial(t, is, srv.Addr())
	is.NoErr(wire.Join{Name: "alice"}.WriteTo(conn))

	readFrame(is, reader) // Hello
	readFrame(is, reader) // AcceptedPlayer
	readFrame(is, reader) // GameStarted

	turn0 := readFrame(is, reader).(wire.Turn)
	var start wire.Position
	for _, ev := range turn0.Events {
		if pm, ok := ev.(wire.PlayerMoved); ok {
			start = pm.Position
		}
	}

	is.NoErr(wire.Move{Direction: wire.DirLeft}.WriteTo(conn))
	turn1 := readFrame(is, reader).(wire.Turn)
	for _, ev := range turn1.Events {
		if _, ok := ev.(wire.PlayerMoved); ok && start.X == 0 {
			t.Fatalf("unexpected PlayerMoved when clamped at x=0")
		}
	}
}
