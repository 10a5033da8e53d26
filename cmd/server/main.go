package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/msulimowicz/robots/internal/server"
	"github.com/phuslu/log"
)

// Config supplies default values for flags, sourced from the
// environment so a deployment can pin defaults without touching the
// invoking command line.
type Config struct {
	ServerName string `envconfig:"ROBOTS_SERVER_NAME" default:"Robots server"`
	Port       uint16 `envconfig:"ROBOTS_SERVER_PORT" default:"0"`
}

func loadConfig() (*Config, error) {
	config := new(Config)
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("could not process config: %w", err)
	}
	return config, nil
}

func configureLogger() *log.Logger {
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

// flags holds the raw CLI values before range validation.
type flags struct {
	bombTimer       uint
	playersCount    uint
	turnDuration    uint
	explosionRadius uint
	initialBlocks   uint
	gameLength      uint
	serverName      string
	port            uint
	seed            int64
	sizeX           uint
	sizeY           uint
}

func parseFlags(config *Config) (*flags, *flag.FlagSet, error) {
	f := &flags{}

	fs := flag.NewFlagSet("robots-server", flag.ContinueOnError)
	fs.Usage = func() {
		fs.SetOutput(os.Stdout)
		fmt.Fprintln(os.Stdout, "usage: robots-server [options]")
		fs.PrintDefaults()
	}

	fs.UintVar(&f.bombTimer, "bomb-timer", 0, "turns before a bomb explodes (1..65535)")
	fs.UintVar(&f.playersCount, "players-count", 0, "number of players required to start (1..255)")
	fs.UintVar(&f.turnDuration, "turn-duration", 0, "turn length in milliseconds (1..)")
	fs.UintVar(&f.explosionRadius, "explosion-radius", 0, "bomb blast arm length (0..65535)")
	fs.UintVar(&f.initialBlocks, "initial-blocks", 0, "number of blocks placed at game start (0..65535)")
	fs.UintVar(&f.gameLength, "game-length", 0, "number of turns per game (1..65535)")
	fs.StringVar(&f.serverName, "server-name", config.ServerName, "server name, at most 255 bytes")
	fs.UintVar(&f.port, "port", uint(config.Port), "TCP port to listen on")
	fs.Int64Var(&f.seed, "seed", -1, "random seed; defaults to current wall time")
	fs.UintVar(&f.sizeX, "size-x", 0, "board width in cells (1..65535)")
	fs.UintVar(&f.sizeY, "size-y", 0, "board height in cells (1..65535)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fs.Usage()
		return nil, fs, err
	}

	return f, fs, nil
}

func buildParams(f *flags, fs *flag.FlagSet) (server.Params, error) {
	fail := func(format string, args ...any) (server.Params, error) {
		err := fmt.Errorf(format, args...)
		fs.Usage()
		return server.Params{}, err
	}

	rangeChecks := []struct {
		name string
		val  uint
		max  uint
	}{
		{"bomb-timer", f.bombTimer, math.MaxUint16},
		{"players-count", f.playersCount, math.MaxUint8},
		{"explosion-radius", f.explosionRadius, math.MaxUint16},
		{"initial-blocks", f.initialBlocks, math.MaxUint16},
		{"game-length", f.gameLength, math.MaxUint16},
		{"size-x", f.sizeX, math.MaxUint16},
		{"size-y", f.sizeY, math.MaxUint16},
		{"port", f.port, math.MaxUint16},
	}
	for _, c := range rangeChecks {
		if c.val > c.max {
			return fail("--%s out of range: %d", c.name, c.val)
		}
	}

	mustPositive := []struct {
		name string
		val  uint
	}{
		{"bomb-timer", f.bombTimer},
		{"players-count", f.playersCount},
		{"turn-duration", f.turnDuration},
		{"game-length", f.gameLength},
		{"size-x", f.sizeX},
		{"size-y", f.sizeY},
	}
	for _, c := range mustPositive {
		if c.val == 0 {
			return fail("--%s must be positive", c.name)
		}
	}

	if len(f.serverName) > 255 {
		return fail("--server-name exceeds 255 bytes")
	}

	var seed uint32
	if f.seed < 0 {
		seed = uint32(time.Now().UnixNano())
	} else {
		seed = uint32(f.seed)
	}

	return server.Params{
		BombTimer:       uint16(f.bombTimer),
		PlayersCount:    uint8(f.playersCount),
		TurnDuration:    time.Duration(f.turnDuration) * time.Millisecond,
		ExplosionRadius: uint16(f.explosionRadius),
		InitialBlocks:   uint16(f.initialBlocks),
		GameLength:      uint16(f.gameLength),
		ServerName:      f.serverName,
		Port:            uint16(f.port),
		Seed:            seed,
		SizeX:           uint16(f.sizeX),
		SizeY:           uint16(f.sizeY),
	}, nil
}

func erringMain() error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	f, fs, err := parseFlags(config)
	if err != nil {
		return err
	}

	params, err := buildParams(f, fs)
	if err != nil {
		return err
	}

	logger := configureLogger()

	srv, err := server.New(params, logger)
	if err != nil {
		return fmt.Errorf("could not construct server: %w", err)
	}
	logger.Info().Msgf("listening on %s", srv.Addr())

	ctx, cancel := context.WithCancel(context.Background())

	runErr := make(chan error, 1)
	go func() {
		runErr <- srv.Run(ctx)
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-signalChan:
		logger.Info().Msgf("received %v signal, shutting down", sig)
		cancel()
		return <-runErr
	case err := <-runErr:
		return err
	}
}

func main() {
	if err := erringMain(); err != nil {
		fmt.Fprintf(os.Stderr, "robots-server: %v\n", err)
		os.Exit(1)
	}
}
