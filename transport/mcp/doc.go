// Package mcp exposes the duel game to MCP clients such as LLM agents.
//
// Client registers one tool per game operation on a mark3labs/mcp-go
// server. Each tool is a thin proxy: it calls the REST API and renders the
// JSON answer as text, including an ASCII board for grid sessions.
//
// Tools:
//   - create_session, join_session
//   - grid_move, simultaneous_move, request_rematch
//   - get_session, list_sessions, delete_session
//   - game_instructions
//
// Agents have no websocket, so player identity is the player_id argument.
// Move tools report the coordinator's Result, so an ignored move comes back
// with the reason rather than as a tool error.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// stdio transport
//	server.ServeStdio(client.GetMCPServer())
//
//	// or inside an HTTP handler
//	resp := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
