package websocket

import (
	"context"
	"encoding/json"
	"log"

	"github.com/wricardo/mcp-training/duelgame/game/service"
)

// Inbound event names
const (
	EventCreateSession          = "create-session"
	EventJoinSession            = "join-session"
	EventSubmitGridMove         = "submit-grid-move"
	EventSubmitSimultaneousMove = "submit-simultaneous-move"
	EventRequestRematch         = "request-rematch"
)

// eventAliases maps names used by older clients onto the current ones
var eventAliases = map[string]string{
	"createGame":  EventCreateSession,
	"joinGame":    EventJoinSession,
	"makeMove":    EventSubmitGridMove,
	"makePPTMove": EventSubmitSimultaneousMove,
	"rematch":     EventRequestRematch,
}

// Message is an inbound frame
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// commandData holds the fields of every inbound event. The second field of
// each pair is the older client's spelling.
type commandData struct {
	Kind      string `json:"kind"`
	GameType  string `json:"gameType"`
	SessionID string `json:"sessionId"`
	GameID    string `json:"gameId"`
	Symbol    string `json:"symbol"`
	CellIndex *int   `json:"cellIndex"`
	Index     *int   `json:"index"`
	Choice    string `json:"choice"`
	Move      string `json:"move"`
}

func (d commandData) kind() string {
	return firstNonEmpty(d.Kind, d.GameType)
}

func (d commandData) sessionID() string {
	return firstNonEmpty(d.SessionID, d.GameID)
}

func (d commandData) choice() string {
	return firstNonEmpty(d.Choice, d.Move)
}

// cell returns -1 when no index was sent, which the engine rejects as out of range
func (d commandData) cell() int {
	switch {
	case d.CellIndex != nil:
		return *d.CellIndex
	case d.Index != nil:
		return *d.Index
	}
	return -1
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// handleMessage decodes one inbound frame and forwards it to the game
// service. The service emits its own events; frames the hub cannot decode
// get a directed error.
func (c *Client) handleMessage(ctx context.Context, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.replyError("malformed message")
		return
	}

	var data commandData
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.replyError("malformed data for " + msg.Event)
			return
		}
	}

	name := msg.Event
	if alias, ok := eventAliases[name]; ok {
		name = alias
	}

	var (
		res *service.Result
		err error
	)
	switch name {
	case EventCreateSession:
		res, err = c.svc.CreateSession(ctx, data.kind(), c.id)
	case EventJoinSession:
		res, err = c.svc.JoinSession(ctx, data.sessionID(), c.id)
	case EventSubmitGridMove:
		res, err = c.svc.SubmitGridMove(ctx, data.sessionID(), c.id, data.Symbol, data.cell())
	case EventSubmitSimultaneousMove:
		res, err = c.svc.SubmitSimultaneousMove(ctx, data.sessionID(), c.id, data.choice())
	case EventRequestRematch:
		res, err = c.svc.RequestRematch(ctx, data.sessionID(), c.id)
	default:
		c.replyError("unknown event: " + msg.Event)
		return
	}

	switch {
	case err != nil:
		log.Printf("Client %s %s failed: %v", c.id, name, err)
	case res != nil && !res.Applied():
		log.Printf("Client %s %s %s: %s", c.id, name, res.Status, res.Reason)
	}
}

func (c *Client) replyError(message string) {
	c.hub.Send(c.id, service.Event{
		Name: service.EventError,
		Data: service.ErrorData{Message: message},
	})
}
