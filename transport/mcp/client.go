package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/duelgame/game/engine"
	"github.com/wricardo/mcp-training/duelgame/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Duel Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Duel Game - MCP Interface

Two-player sessions of tic-tac-toe ("grid") and rock-paper-scissors
("simultaneous"). Every tool proxies to the REST API server.

Pick a player_id once and pass it to every call. create_session and
join_session return one if you leave it out.

AVAILABLE TOOLS:
- create_session: Open a session and become its first player
- join_session: Join a waiting session as second player
- grid_move: Place your symbol (X or O) on cell 0-8
- simultaneous_move: Submit rock, paper or scissors
- request_rematch: Start over after a finished game (if the server allows it)
- get_session / list_sessions / delete_session: Inspect and tidy up
- game_instructions: Rules and board layout`),
	)

	c.registerTools()
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

var (
	sessionIDProp = stringProp("Session ID")
	playerIDProp  = stringProp("Your player ID")
)

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new two-player session and join it as the first player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"kind": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"grid", "simultaneous"},
					"description": "grid (tic-tac-toe) or simultaneous (rock-paper-scissors)",
				},
				"player_id": stringProp("Your player ID (optional, generated when empty)"),
			},
			Required: []string{"kind"},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_session",
		Description: "Join a waiting session as the second player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"player_id":  stringProp("Your player ID (optional, generated when empty)"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleJoinSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get the board, players and outcome of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleDeleteSession)

	// Moves
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "grid_move",
		Description: "Place your symbol on a tic-tac-toe cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"player_id":  playerIDProp,
				"symbol": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"X", "O"},
					"description": "Your symbol; the creator plays X",
				},
				"cell_index": map[string]interface{}{
					"type":        "integer",
					"minimum":     0,
					"maximum":     engine.BoardSize - 1,
					"description": "Cell 0-8, row-major from the top-left",
				},
			},
			Required: []string{"session_id", "player_id", "symbol", "cell_index"},
		},
	}, c.handleGridMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "simultaneous_move",
		Description: "Submit your hidden choice for the current rock-paper-scissors round",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"player_id":  playerIDProp,
				"choice": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"rock", "paper", "scissors"},
					"description": "Your choice",
				},
			},
			Required: []string{"session_id", "player_id", "choice"},
		},
	}, c.handleSimultaneousMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "request_rematch",
		Description: "Reset a finished session so both players can play again",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"player_id":  playerIDProp,
			},
			Required: []string{"session_id", "player_id"},
		},
	}, c.handleRematch)

	// Help
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of both games and how to play them through these tools",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool call arguments, or an empty map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

// sessionPath builds /api/sessions/{id}[/suffix]
func sessionPath(sessionID, suffix string) string {
	p := "/api/sessions/" + sessionID
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

// membership is the REST answer to create and join
type membership struct {
	PlayerID string                   `json:"player_id"`
	Status   service.ResultStatus     `json:"status"`
	Session  *service.SessionSnapshot `json:"session"`
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	kind, _ := args["kind"].(string)
	playerID, _ := args["player_id"].(string)

	var resp membership
	err := c.apiCall(ctx, "POST", "/api/sessions", map[string]string{"kind": kind, "player_id": playerID}, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Created session: %s\nYour player ID: %s\n", resp.Session.ID, resp.PlayerID)
	if resp.Session.Kind == engine.KindGrid {
		text += "You play X and move first once an opponent joins.\n"
	}
	text += "Share the session ID with your opponent so they can join_session.\n\n"
	text += formatSession(resp.Session)
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleJoinSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	playerID, _ := args["player_id"].(string)

	var resp membership
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "join"), map[string]string{"player_id": playerID}, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Joined session: %s\nYour player ID: %s\n", resp.Session.ID, resp.PlayerID)
	if mark, ok := resp.Session.Symbols[resp.PlayerID]; ok {
		text += fmt.Sprintf("You play %s.\n", mark)
	}
	text += "\n" + formatSession(resp.Session)
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Count    int                        `json:"count"`
		Sessions []*service.SessionSnapshot `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if resp.Count == 0 {
		return mcp.NewToolResultText("No active sessions"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active sessions (%d):\n", resp.Count)
	for _, s := range resp.Sessions {
		fmt.Fprintf(&b, "- %s [%s] players=%d/%d outcome=%s\n", s.ID, s.Kind, len(s.Players), service.MaxPlayers, s.Outcome.Status)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var snap service.SessionSnapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSession(&snap)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	if err := c.apiCall(ctx, "DELETE", sessionPath(sessionID, ""), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Session %s deleted", sessionID)), nil
}

func (c *Client) handleGridMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	playerID, _ := args["player_id"].(string)
	symbol, _ := args["symbol"].(string)

	// JSON numbers arrive as float64
	cell, ok := args["cell_index"].(float64)
	if !ok {
		return mcp.NewToolResultError("cell_index must be a number from 0 to 8"), nil
	}

	body := map[string]interface{}{
		"player_id":  playerID,
		"symbol":     symbol,
		"cell_index": int(cell),
	}

	var res service.Result
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "grid-move"), body, &res); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatResult(&res, playerID)), nil
}

func (c *Client) handleSimultaneousMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	playerID, _ := args["player_id"].(string)
	choice, _ := args["choice"].(string)

	body := map[string]string{"player_id": playerID, "choice": choice}

	var res service.Result
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "simultaneous-move"), body, &res); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatResult(&res, playerID)), nil
}

func (c *Client) handleRematch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	playerID, _ := args["player_id"].(string)

	var res service.Result
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "rematch"), map[string]string{"player_id": playerID}, &res); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatResult(&res, playerID)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

const gameInstructions = `DUEL GAME INSTRUCTIONS

Every session has exactly two players. The creator is player one; the
second player to join_session starts the game. A third join is refused.

GRID (tic-tac-toe)
- Player one plays X, player two plays O. X moves first.
- Cells are numbered row-major:

   0 | 1 | 2
  ---+---+---
   3 | 4 | 5
  ---+---+---
   6 | 7 | 8

- Three in a row, column or diagonal wins. A full board with no line is a draw.
- Moves out of turn, on a taken cell or after the game ended are ignored:
  the board stays the same and the result says why.

SIMULTANEOUS (rock-paper-scissors)
- Each player submits rock, paper or scissors; nobody sees the other's choice.
- When both have chosen, the round resolves: rock beats scissors, scissors
  beats paper, paper beats rock.
- A draw shows for a couple of seconds, then a new round starts on its own.
- Submitting twice before your opponent replaces your earlier choice.

AFTER THE GAME
- request_rematch resets a finished session when the server allows rematches.
- Otherwise create a new session.`

// Formatting helpers

func formatSession(s *service.SessionSnapshot) string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s (%s)\n", s.ID, s.Kind)
	fmt.Fprintf(&b, "Players: %s (%d/%d)\n", strings.Join(s.Players, ", "), len(s.Players), service.MaxPlayers)

	switch s.Kind {
	case engine.KindGrid:
		if s.Board != nil {
			b.WriteString(formatBoard(s.Board))
		}
		if s.Outcome.Status == engine.StatusPending && len(s.Players) == service.MaxPlayers {
			fmt.Fprintf(&b, "Turn: %s\n", s.Turn)
		}
	case engine.KindSimultaneous:
		fmt.Fprintf(&b, "Round: %d\n", s.Round)
		if len(s.Submitted) > 0 {
			fmt.Fprintf(&b, "Submitted: %s\n", strings.Join(s.Submitted, ", "))
		}
	}

	b.WriteString(formatOutcome(s))
	return b.String()
}

func formatBoard(board *engine.Board) string {
	var b strings.Builder
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			idx := row*3 + col
			if board[idx] == engine.MarkEmpty {
				cells[col] = fmt.Sprintf("%d", idx)
			} else {
				cells[col] = string(board[idx])
			}
		}
		b.WriteString(" " + strings.Join(cells, " | ") + "\n")
		if row < 2 {
			b.WriteString("---+---+---\n")
		}
	}
	return b.String()
}

func formatOutcome(s *service.SessionSnapshot) string {
	switch s.Outcome.Status {
	case engine.StatusWinner:
		if s.Outcome.Mark != engine.MarkEmpty {
			return fmt.Sprintf("Outcome: %s wins as %s\n", s.Outcome.Winner, s.Outcome.Mark)
		}
		return fmt.Sprintf("Outcome: %s wins\n", s.Outcome.Winner)
	case engine.StatusDraw:
		return "Outcome: draw\n"
	}
	if len(s.Players) < service.MaxPlayers {
		return "Outcome: waiting for opponent\n"
	}
	return "Outcome: in play\n"
}

// formatResult describes a move Result from playerID's point of view
func formatResult(res *service.Result, playerID string) string {
	var b strings.Builder

	switch res.Status {
	case service.StatusApplied:
		b.WriteString("Move applied.\n")
	default:
		fmt.Fprintf(&b, "Move %s: %s\n", res.Status, res.Reason)
	}

	for _, d := range res.Events {
		if d.Event.Name != service.EventRoundResult || !addressedTo(d, playerID) {
			continue
		}
		if data, ok := d.Event.Data.(map[string]interface{}); ok {
			fmt.Fprintf(&b, "Round result: you played %v, opponent played %v\n", data["yourMove"], data["opponentMove"])
		}
	}

	if res.Session != nil {
		b.WriteString("\n" + formatSession(res.Session))
	}
	return b.String()
}

func addressedTo(d service.Delivery, playerID string) bool {
	for _, to := range d.To {
		if to == playerID {
			return true
		}
	}
	return false
}
