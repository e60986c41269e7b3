// Command duelbot plays complete duel games against a running server through
// the REST API, taking both seats. It is a smoke test for a deployment: each
// game creates a session, joins it and plays until there is a result.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/duelgame/game/engine"
	"github.com/wricardo/mcp-training/duelgame/game/service"
)

// maxRounds bounds a simultaneous game that keeps drawing
const maxRounds = 20

var errTooManyRounds = errors.New("no decisive round")

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "duelbot",
		Usage: "Play duel games against a server, controlling both players",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:8080",
				Usage:   "Game server URL",
				Sources: cli.EnvVars("DUEL_URL"),
			},
			&cli.StringFlag{
				Name:  "kind",
				Value: string(engine.KindGrid),
				Usage: "Game kind (grid or simultaneous)",
			},
			&cli.IntFlag{
				Name:  "games",
				Value: 1,
				Usage: "Number of games to play",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Delay between moves",
			},
			&cli.BoolFlag{
				Name:  "keep",
				Usage: "Keep finished sessions instead of deleting them",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log every move",
			},
		},
		Action: run,
	}
}

// bot plays games through a Client
type bot struct {
	client  *Client
	delay   time.Duration
	verbose bool
}

func run(ctx context.Context, cmd *cli.Command) error {
	kind, err := engine.ParseKind(cmd.String("kind"))
	if err != nil {
		return err
	}

	log.Printf("Connecting to game server at %s", cmd.String("url"))
	b := &bot{
		client:  NewClient(cmd.String("url")),
		delay:   cmd.Duration("delay"),
		verbose: cmd.Bool("verbose"),
	}

	tally := map[string]int{}
	for i := 1; i <= cmd.Int("games"); i++ {
		snap, err := b.play(ctx, kind)
		if err != nil {
			return fmt.Errorf("game %d: %w", i, err)
		}
		log.Printf("Game %d (%s): %s", i, snap.ID, describe(snap))
		tally[string(snap.Outcome.Status)]++

		if !cmd.Bool("keep") {
			if err := b.client.DeleteSession(ctx, snap.ID); err != nil {
				log.Printf("Warning: %v", err)
			}
		}
	}

	log.Printf("Finished: %d won, %d drawn", tally[string(engine.StatusWinner)], tally[string(engine.StatusDraw)])
	return nil
}

// play runs one game to completion and returns the final snapshot
func (b *bot) play(ctx context.Context, kind engine.Kind) (*service.SessionSnapshot, error) {
	players := [2]string{uuid.NewString(), uuid.NewString()}

	created, err := b.client.CreateSession(ctx, string(kind), players[0])
	if err != nil {
		return nil, err
	}
	joined, err := b.client.JoinSession(ctx, created.Session.ID, players[1])
	if err != nil {
		return nil, err
	}

	if kind == engine.KindGrid {
		return b.playGrid(ctx, joined.Session)
	}
	return b.playSimultaneous(ctx, joined.Session, players)
}

func (b *bot) playGrid(ctx context.Context, snap *service.SessionSnapshot) (*service.SessionSnapshot, error) {
	for moves := 0; snap.Outcome.Status == engine.StatusPending; moves++ {
		if moves >= engine.BoardSize {
			return nil, fmt.Errorf("session %s still pending after %d moves", snap.ID, moves)
		}

		mark := snap.Turn
		player := holderOf(snap, mark)
		cell := NextCell(*snap.Board, mark)

		res, err := b.client.GridMove(ctx, snap.ID, player, string(mark), cell)
		if err != nil {
			return nil, err
		}
		if res.Status != service.StatusApplied {
			return nil, fmt.Errorf("move %s@%d %s: %s", mark, cell, res.Status, res.Reason)
		}
		if b.verbose {
			log.Printf("  %s -> %d", mark, cell)
		}
		snap = res.Session
		b.pause(ctx)
	}
	return snap, nil
}

func (b *bot) playSimultaneous(ctx context.Context, snap *service.SessionSnapshot, players [2]string) (*service.SessionSnapshot, error) {
	for round := 0; round < maxRounds; round++ {
		for _, p := range players {
			choice := RandomChoice()
			res, err := b.client.SimultaneousMove(ctx, snap.ID, p, string(choice))
			if err != nil {
				return nil, err
			}
			if res.Status != service.StatusApplied {
				return nil, fmt.Errorf("move %s: %s", res.Status, res.Reason)
			}
			if b.verbose {
				log.Printf("  round %d: %s", res.Session.Round, choice)
			}
			snap = res.Session
		}

		if snap.Outcome.Status == engine.StatusWinner {
			return snap, nil
		}

		var err error
		if snap, err = b.awaitReset(ctx, snap.ID); err != nil {
			return nil, err
		}
		b.pause(ctx)
	}
	return nil, fmt.Errorf("session %s: %w after %d rounds", snap.ID, errTooManyRounds, maxRounds)
}

// awaitReset polls until a drawn round has been cleared by the server
func (b *bot) awaitReset(ctx context.Context, sessionID string) (*service.SessionSnapshot, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		snap, err := b.client.GetSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if snap.Outcome.Status == engine.StatusPending {
			return snap, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (b *bot) pause(ctx context.Context) {
	if b.delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(b.delay):
	}
}

func holderOf(snap *service.SessionSnapshot, mark engine.Mark) string {
	for p, m := range snap.Symbols {
		if m == mark {
			return p
		}
	}
	return ""
}

func describe(snap *service.SessionSnapshot) string {
	switch snap.Outcome.Status {
	case engine.StatusDraw:
		return "draw"
	case engine.StatusWinner:
		if snap.Outcome.Mark != engine.MarkEmpty {
			return fmt.Sprintf("%s wins as %s", snap.Outcome.Winner, snap.Outcome.Mark)
		}
		return fmt.Sprintf("%s wins round %d", snap.Outcome.Winner, snap.Round)
	}
	return string(snap.Outcome.Status)
}
