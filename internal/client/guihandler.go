package client

import (
	"github.com/msulimowicz/robots/internal/wire"
)

// GUIHandler translates datagrams from the local GUI into intents sent
// to the game server, gated by the current lobby/game phase.
type GUIHandler struct {
	server *ServerLink
	gui    *GUILink
	state  *State
}

func NewGUIHandler(server *ServerLink, gui *GUILink, state *State) *GUIHandler {
	return &GUIHandler{server: server, gui: gui, state: state}
}

// Run blocks forever, translating one GUI datagram per iteration. It
// returns only on a fatal GUI-socket read error or server-write error;
// a malformed or unrecognized datagram is dropped and the loop continues.
func (h *GUIHandler) Run() error {
	for {
		if err := h.handleOne(); err != nil {
			return err
		}
	}
}

func (h *GUIHandler) handleOne() error {
	datagram, err := h.gui.ReadDatagram()
	if err != nil {
		return err
	}

	msg, decodeErr := wire.DecodeGUIInMsg(datagram)
	if decodeErr != nil {
		return nil
	}

	h.state.Lock()
	defer h.state.Unlock()

	clientMsg, ok := h.Translate(msg)
	if !ok {
		return nil
	}
	return h.server.WriteClientMsg(clientMsg)
}

// Translate maps one GUI input to a server-bound intent. A Move whose
// direction exceeds 3 is malformed and dropped regardless of phase.
// While in the lobby, any other input is interpreted as a Join;
// otherwise each input maps to its namesake intent.
func (h *GUIHandler) Translate(msg wire.GUIInMsg) (wire.ClientMsg, bool) {
	if m, ok := msg.(wire.GUIInMoveMsg); ok && m.Direction > 3 {
		return nil, false
	}

	if h.state.IsLobby {
		return wire.Join{Name: h.state.PlayerName}, true
	}

	switch m := msg.(type) {
	case wire.GUIInPlaceBombMsg:
		return wire.PlaceBomb{}, true
	case wire.GUIInPlaceBlockMsg:
		return wire.PlaceBlock{}, true
	case wire.GUIInMoveMsg:
		return wire.Move{Direction: wire.Direction(m.Direction)}, true
	default:
		return nil, false
	}
}
