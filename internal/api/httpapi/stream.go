package httpapi

import (
	"github.com/rs/zerolog"
	"golang.org/x/net/websocket"

	"github.com/Ellipz/ManaSourceCalc/internal/service"
	"github.com/Ellipz/ManaSourceCalc/internal/sim"
)

// Message is the websocket envelope in both directions. Clients send
// {"type":"analyze","analyze":{...}}; the server answers with one
// "spell" message per spell, then "done" or "error".
type Message struct {
	Type    string                   `json:"type"`
	Analyze *service.AnalyzeRequest  `json:"analyze,omitempty"`
	Spell   *sim.SpellResult         `json:"spell,omitempty"`
	Result  *service.AnalyzeResponse `json:"result,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

func (h *handler) stream(conn *websocket.Conn) {
	defer conn.Close()
	ctx := h.log.WithContext(conn.Request().Context())
	for {
		var msg Message
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			return
		}
		if err := h.handleMessage(conn, &msg); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("websocket send failed")
			return
		}
	}
}

func (h *handler) handleMessage(conn *websocket.Conn, msg *Message) error {
	if msg.Type != "analyze" || msg.Analyze == nil {
		return websocket.JSON.Send(conn, Message{Type: "error", Error: "expected an analyze message"})
	}
	ctx := h.log.WithContext(conn.Request().Context())

	var sendErr error
	resp, err := h.svc.Analyze(ctx, *msg.Analyze, func(sr sim.SpellResult) {
		if sendErr == nil {
			sendErr = websocket.JSON.Send(conn, Message{Type: "spell", Spell: &sr})
		}
	})
	if sendErr != nil {
		return sendErr
	}
	if err != nil {
		return websocket.JSON.Send(conn, Message{Type: "error", Error: err.Error()})
	}
	return websocket.JSON.Send(conn, Message{Type: "done", Result: &resp})
}
