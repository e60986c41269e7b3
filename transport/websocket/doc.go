// Package websocket provides the realtime transport for the duel game server.
//
// The Hub implements service.Broadcaster. Every connection gets a uuid that
// doubles as the player identity, announced to the client in a connected
// event right after the upgrade.
//
// Message Protocol:
//
// Frames in both directions are JSON objects of the form
//
//	{"event": "submit-grid-move", "data": {"sessionId": "k3x9qa", "symbol": "X", "cellIndex": 4}}
//
// Inbound events are create-session, join-session, submit-grid-move,
// submit-simultaneous-move and request-rematch. The createGame, joinGame,
// makeMove and makePPTMove names (with gameType, gameId, index and move
// fields) are accepted as well.
//
// Outbound frames carry an event name, the session_id and a data payload;
// see the Event constants in the service package.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	coord := service.NewCoordinator(store, hub, opts)
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, coord)
//	})
//
// A client whose send buffer fills up is dropped rather than allowed to
// block the coordinator.
package websocket
