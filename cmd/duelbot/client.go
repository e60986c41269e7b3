package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wricardo/mcp-training/duelgame/game/service"
)

// Client talks to the duel game REST API
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// membership is the create/join response
type membership struct {
	PlayerID string                   `json:"player_id"`
	Status   service.ResultStatus     `json:"status"`
	Session  *service.SessionSnapshot `json:"session"`
}

// moveResponse is the subset of a coordinator Result the bot reads
type moveResponse struct {
	Status  service.ResultStatus     `json:"status"`
	Reason  string                   `json:"reason"`
	Session *service.SessionSnapshot `json:"session"`
}

func (c *Client) CreateSession(ctx context.Context, kind, playerID string) (*membership, error) {
	var m membership
	body := map[string]string{"kind": kind, "player_id": playerID}
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &m); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &m, nil
}

func (c *Client) JoinSession(ctx context.Context, sessionID, playerID string) (*membership, error) {
	var m membership
	body := map[string]string{"player_id": playerID}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/join", body, &m); err != nil {
		return nil, fmt.Errorf("join session: %w", err)
	}
	return &m, nil
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*service.SessionSnapshot, error) {
	var snap service.SessionSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+sessionID, nil, &snap); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &snap, nil
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/sessions/"+sessionID, nil, nil); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (c *Client) GridMove(ctx context.Context, sessionID, playerID, symbol string, cell int) (*moveResponse, error) {
	var res moveResponse
	body := map[string]interface{}{"player_id": playerID, "symbol": symbol, "cell_index": cell}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/grid-move", body, &res); err != nil {
		return nil, fmt.Errorf("grid move: %w", err)
	}
	return &res, nil
}

func (c *Client) SimultaneousMove(ctx context.Context, sessionID, playerID, choice string) (*moveResponse, error) {
	var res moveResponse
	body := map[string]string{"player_id": playerID, "choice": choice}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/simultaneous-move", body, &res); err != nil {
		return nil, fmt.Errorf("simultaneous move: %w", err)
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s - %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s - %s", resp.Status, string(data))
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
