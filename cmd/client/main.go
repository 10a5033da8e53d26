package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	"github.com/msulimowicz/robots/internal/client"
	"github.com/phuslu/log"
)

// Config supplies default values for flags, sourced from the
// environment so a deployment can pin defaults without touching the
// invoking command line.
type Config struct {
	GUIAddress string `envconfig:"ROBOTS_CLIENT_GUI_ADDRESS" default:"127.0.0.1:5005"`
	Port       uint16 `envconfig:"ROBOTS_CLIENT_PORT" default:"0"`
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
	guiAddress    string
	playerName    string
	port          uint
	serverAddress string
}

func parseFlags(config *Config) (*flags, *flag.FlagSet, error) {
	f := &flags{}

	fs := flag.NewFlagSet("robots-client", flag.ContinueOnError)
	fs.Usage = func() {
		fs.SetOutput(os.Stdout)
		fmt.Fprintln(os.Stdout, "usage: robots-client [options]")
		fs.PrintDefaults()
	}

	fs.StringVar(&f.guiAddress, "gui-address", config.GUIAddress, "UDP address of the local GUI")
	fs.StringVar(&f.playerName, "player-name", "", "player name, at most 255 bytes")
	fs.UintVar(&f.port, "port", uint(config.Port), "local UDP port to listen on for the GUI")
	fs.StringVar(&f.serverAddress, "server-address", "", "TCP address of the game server")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fs.Usage()
		return nil, fs, err
	}

	return f, fs, nil
}

func buildParams(f *flags, fs *flag.FlagSet) (client.Params, error) {
	fail := func(format string, args ...any) (client.Params, error) {
		err := fmt.Errorf(format, args...)
		fs.Usage()
		return client.Params{}, err
	}

	if f.port > math.MaxUint16 {
		return fail("--port out of range: %d", f.port)
	}
	if len(f.playerName) == 0 {
		return fail("--player-name is required")
	}
	if len(f.playerName) > 255 {
		return fail("--player-name exceeds 255 bytes")
	}
	if f.serverAddress == "" {
		return fail("--server-address is required")
	}
	if f.guiAddress == "" {
		return fail("--gui-address is required")
	}

	return client.Params{
		GUIAddress:    f.guiAddress,
		PlayerName:    f.playerName,
		Port:          uint16(f.port),
		ServerAddress: f.serverAddress,
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

	c, err := client.New(params)
	if err != nil {
		return fmt.Errorf("could not construct client: %w", err)
	}
	defer c.Close()
	logger.Info().Msgf("connected to %s, relaying gui at %s", params.ServerAddress, params.GUIAddress)

	runErr := make(chan error, 1)
	go func() {
		runErr <- c.Run()
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-signalChan:
		logger.Info().Msgf("received %v signal, shutting down", sig)
		return nil
	case err := <-runErr:
		return err
	}
}

func main() {
	if err := erringMain(); err != nil {
		fmt.Fprintf(os.Stderr, "robots-client: %v\n", err)
		os.Exit(1)
	}
}
