package client

import (
	"fmt"
)

// Params are the client proxy's fixed parameters, sourced from CLI
// flags at startup.
type Params struct {
	GUIAddress    string
	PlayerName    string
	Port          uint16
	ServerAddress string
}

// Client wires a ServerLink and GUILink around one shared State and
// runs the two handler loops: the server handler on the caller's
// goroutine, the GUI handler on a spawned one.
type Client struct {
	server *ServerLink
	gui    *GUILink
	state  *State

	serverHandler *ServerHandler
	guiHandler    *GUIHandler
}

func New(params Params) (*Client, error) {
	server, err := DialServer(params.ServerAddress)
	if err != nil {
		return nil, fmt.Errorf("could not connect to server: %w", err)
	}

	gui, err := DialGUI(params.Port, params.GUIAddress)
	if err != nil {
		server.Close()
		return nil, fmt.Errorf("could not open gui link: %w", err)
	}

	state := NewState(params.PlayerName)

	return &Client{
		server:        server,
		gui:           gui,
		state:         state,
		serverHandler: NewServerHandler(server, gui, state),
		guiHandler:    NewGUIHandler(server, gui, state),
	}, nil
}

// Run starts the GUI handler in the background and blocks on the
// server handler. Either handler returning an error is fatal to the
// whole client, matching the original's "no isolation boundary"
// propagation policy.
func (c *Client) Run() error {
	guiErr := make(chan error, 1)
	go func() {
		guiErr <- c.guiHandler.Run()
		// Closing the server link unblocks the server handler, so a GUI
		// failure ends Run as well.
		c.server.Close()
	}()

	serverErr := c.serverHandler.Run()
	select {
	case err := <-guiErr:
		if serverErr != nil {
			return serverErr
		}
		return err
	default:
		return serverErr
	}
}

func (c *Client) Close() {
	c.server.Close()
	c.gui.Close()
}
