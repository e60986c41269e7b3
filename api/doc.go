// Package api provides the HTTP REST API for the duel game server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session {kind, player_id}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N&kind=grid)
//   - GET /api/sessions/{id} - Get a session snapshot
//   - DELETE /api/sessions/{id} - Delete a session
//   - POST /api/sessions/{id}/join - Join as second player {player_id}
//
// Game Operations:
//   - POST /api/sessions/{id}/grid-move - {player_id, symbol, cell_index}
//   - POST /api/sessions/{id}/simultaneous-move - {player_id, choice}
//   - POST /api/sessions/{id}/rematch - {player_id}
//
// Other:
//   - GET /api/health - Liveness and connection count
//   - GET /ws - WebSocket upgrade, see package websocket
//
// When player_id is omitted on create or join, the server assigns a UUID and
// returns it.
//
// Move endpoints answer 200 with the coordinator's Result even when the move
// was ignored; status and reason tell the caller what happened. Other
// failures are JSON errors:
//
//	{"error": "session is full: k3x9qa"}
//
// with 400 for bad input or an unsupported kind, 404 for unknown sessions and
// 409 when the session is full or the player already joined.
package api
