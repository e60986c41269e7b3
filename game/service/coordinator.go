package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/duelgame/game/engine"
)

// RematchPolicy controls how a finished session can be played again
type RematchPolicy string

const (
	// RematchNone leaves decisive sessions finished; only draws reset
	RematchNone RematchPolicy = "none"
	// RematchExplicit lets either player reset a finished session
	RematchExplicit RematchPolicy = "explicit"
	// RematchAuto also schedules the delayed reset after decisive
	// simultaneous rounds, and honours explicit requests
	RematchAuto RematchPolicy = "auto"
)

// ParseRematchPolicy validates a policy name; empty means RematchNone
func ParseRematchPolicy(s string) (RematchPolicy, error) {
	switch p := RematchPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return RematchNone, nil
	case RematchNone, RematchExplicit, RematchAuto:
		return p, nil
	}
	return "", fmt.Errorf("unknown rematch policy %q (want none, explicit or auto)", s)
}

// DefaultRoundResetDelay is how long a drawn round stays visible before it resets
const DefaultRoundResetDelay = 2 * time.Second

// Options tunes the coordinator
type Options struct {
	RoundResetDelay time.Duration
	Rematch         RematchPolicy
	Scheduler       Scheduler
}

var _ GameService = (*Coordinator)(nil)

// Coordinator is the single writer of session state. Every operation runs
// under one mutex, so two players' submissions against the same session are
// applied one after the other and a round resolves exactly once.
type Coordinator struct {
	store SessionStore
	out   Broadcaster
	sched Scheduler
	opts  Options
	mu    sync.Mutex
}

// NewCoordinator creates a coordinator over store that delivers events to out
func NewCoordinator(store SessionStore, out Broadcaster, opts Options) *Coordinator {
	if opts.RoundResetDelay <= 0 {
		opts.RoundResetDelay = DefaultRoundResetDelay
	}
	if opts.Rematch == "" {
		opts.Rematch = RematchNone
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = clockScheduler{}
	}

	return &Coordinator{
		store: store,
		out:   out,
		sched: sched,
		opts:  opts,
	}
}

// CreateSession opens a session of the named kind with requester as first player
func (c *Coordinator) CreateSession(ctx context.Context, kindName, requester string) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kind, err := engine.ParseKind(kindName)
	if err != nil {
		err = fmt.Errorf("%w: %q", ErrUnsupportedGameKind, kindName)
		return c.reject(requester, "", err), err
	}

	sess, err := c.store.Create("", kind)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.Players = append(sess.Players, requester)

	log.Printf("Session %s created (kind=%s, player=%s)", sess.ID, kind, requester)

	res := &Result{Status: StatusApplied, Session: sess.Snapshot()}
	c.emit(res, direct(requester, Event{
		Name:      EventSessionCreated,
		SessionID: sess.ID,
		Data:      SessionCreatedData{ID: sess.ID, PlayerID: requester, Kind: kind},
	}))
	return res, nil
}

// JoinSession admits requester as the second player and starts the game
func (c *Coordinator) JoinSession(ctx context.Context, sessionID, requester string) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.store.Get(sessionID)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		return c.reject(requester, sessionID, err), err
	}
	if sess.Full() {
		err = fmt.Errorf("%w: %s", ErrSessionFull, sess.ID)
		return c.reject(requester, sess.ID, err), err
	}
	if sess.HasPlayer(requester) {
		err = fmt.Errorf("%w: %s", ErrAlreadyJoined, sess.ID)
		return c.reject(requester, sess.ID, err), err
	}

	sess.Players = append(sess.Players, requester)
	c.touch(sess)

	log.Printf("Player %s joined session %s (%d/%d)", requester, sess.ID, len(sess.Players), MaxPlayers)

	snap := sess.Snapshot()
	res := &Result{Status: StatusApplied, Session: snap}
	if !sess.Full() {
		return res, nil
	}

	for _, p := range sess.Players {
		role := p
		if sess.Kind == engine.KindGrid {
			role = string(sess.SymbolOf(p))
		}
		c.emit(res, direct(p, Event{
			Name:      EventGameStarted,
			SessionID: sess.ID,
			Data:      GameStartedData{Role: role, Session: snap},
		}))
	}
	return res, nil
}

// SubmitGridMove plays symbol at cell. Illegal moves are discarded without
// mutation or events; the returned Result says why.
func (c *Coordinator) SubmitGridMove(ctx context.Context, sessionID, requester, symbol string, cell int) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.store.Get(sessionID)
	if err != nil {
		return c.ignore(sessionID, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)), nil
	}
	if sess.Kind != engine.KindGrid {
		return c.ignore(sess.ID, invalidMove(sess.ID, errWrongKind)), nil
	}
	mark, err := engine.ParseMark(symbol)
	if err != nil {
		return c.ignore(sess.ID, invalidMove(sess.ID, err)), nil
	}
	if !sess.Full() {
		return c.ignore(sess.ID, invalidMove(sess.ID, errNotStarted)), nil
	}
	if requester != "" {
		if !sess.HasPlayer(requester) {
			return c.ignore(sess.ID, invalidMove(sess.ID, errNotParticipant)), nil
		}
		if sess.SymbolOf(requester) != mark {
			return c.ignore(sess.ID, invalidMove(sess.ID, errSymbolNotOwned)), nil
		}
	}

	result, err := sess.Grid.Apply(mark, cell)
	if err != nil {
		return c.ignore(sess.ID, invalidMove(sess.ID, err)), nil
	}

	sess.Outcome = Outcome{Status: result.Status}
	if result.Status == engine.StatusWinner {
		sess.Outcome.Mark = result.Winner
		sess.Outcome.Winner = sess.PlayerWithSymbol(result.Winner)
	}
	c.touch(sess)

	log.Printf("[MOVE] session=%s %s@%d outcome=%s turn=%s", sess.ID, mark, cell, result.Status, sess.Grid.Turn)

	snap := sess.Snapshot()
	res := &Result{Status: StatusApplied, Session: snap}
	c.emit(res, broadcast(sess, Event{
		Name:      EventGameUpdated,
		SessionID: sess.ID,
		Data:      GameUpdatedData{Session: snap},
	}))
	return res, nil
}

// SubmitSimultaneousMove records requester's hidden choice and resolves the
// round as soon as both players have submitted.
func (c *Coordinator) SubmitSimultaneousMove(ctx context.Context, sessionID, requester, choiceName string) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.store.Get(sessionID)
	if err != nil {
		return c.ignore(sessionID, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)), nil
	}
	if sess.Kind != engine.KindSimultaneous {
		return c.ignore(sess.ID, invalidMove(sess.ID, errWrongKind)), nil
	}
	if sess.Outcome.Status != engine.StatusPending {
		return c.ignore(sess.ID, invalidMove(sess.ID, engine.ErrGameFinished)), nil
	}
	if !sess.HasPlayer(requester) {
		return c.ignore(sess.ID, invalidMove(sess.ID, errNotParticipant)), nil
	}
	choice, err := engine.ParseChoice(choiceName)
	if err != nil {
		return c.ignore(sess.ID, invalidMove(sess.ID, err)), nil
	}

	sess.Round.Submit(requester, choice)
	c.touch(sess)

	res := &Result{Status: StatusApplied}
	if sess.Full() && sess.Round.Complete(MaxPlayers) {
		c.resolveRound(sess, res)
	}
	res.Session = sess.Snapshot()
	return res, nil
}

// resolveRound decides a complete round and tells each player the result
func (c *Coordinator) resolveRound(sess *Session, res *Result) {
	p1, p2 := sess.Players[0], sess.Players[1]
	m1, m2 := sess.Round.Moves[p1], sess.Round.Moves[p2]

	var winner *string
	switch engine.Resolve(m1, m2) {
	case engine.Draw:
		sess.Outcome = Outcome{Status: engine.StatusDraw}
	case engine.WinnerIsA:
		sess.Outcome = Outcome{Status: engine.StatusWinner, Winner: p1}
		winner = &p1
	case engine.WinnerIsB:
		sess.Outcome = Outcome{Status: engine.StatusWinner, Winner: p2}
		winner = &p2
	}

	log.Printf("[ROUND] session=%s round=%d %s vs %s outcome=%s winner=%s",
		sess.ID, sess.RoundNumber, m1, m2, sess.Outcome.Status, sess.Outcome.Winner)

	c.emit(res,
		direct(p1, Event{
			Name:      EventRoundResult,
			SessionID: sess.ID,
			Data:      RoundResultData{YourMove: m1, OpponentMove: m2, Winner: winner, Round: sess.RoundNumber},
		}),
		direct(p2, Event{
			Name:      EventRoundResult,
			SessionID: sess.ID,
			Data:      RoundResultData{YourMove: m2, OpponentMove: m1, Winner: winner, Round: sess.RoundNumber},
		}),
	)

	if sess.Outcome.Status == engine.StatusDraw || c.opts.Rematch == RematchAuto {
		c.scheduleReset(sess)
	}
}

// scheduleReset arms the delayed round reset. The callback only acts if the
// session still exists at the same generation.
func (c *Coordinator) scheduleReset(sess *Session) {
	sess.cancelReset()
	id, gen := sess.ID, sess.Generation
	sess.resetTimer = c.sched.AfterFunc(c.opts.RoundResetDelay, func() {
		c.fireReset(id, gen)
	})
}

func (c *Coordinator) fireReset(id string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.store.Get(id)
	if err != nil {
		return
	}
	if sess.Generation != gen {
		log.Printf("Ignoring stale reset for session %s (generation %d, now %d)", id, gen, sess.Generation)
		return
	}
	sess.resetTimer = nil
	c.resetSession(sess, nil)
}

// resetSession clears the payload so the players can play again
func (c *Coordinator) resetSession(sess *Session, res *Result) {
	sess.cancelReset()
	switch sess.Kind {
	case engine.KindGrid:
		sess.Grid.Reset()
	case engine.KindSimultaneous:
		sess.Round.Clear()
		sess.RoundNumber++
	}
	sess.Outcome = Outcome{Status: engine.StatusPending}
	c.touch(sess)

	log.Printf("Session %s reset (round %d)", sess.ID, sess.RoundNumber)

	c.emit(res, broadcast(sess, Event{
		Name:      EventRoundReset,
		SessionID: sess.ID,
		Data:      RoundResetData{SessionID: sess.ID, Round: sess.RoundNumber},
	}))
}

// RequestRematch resets a finished session when the rematch policy allows it
func (c *Coordinator) RequestRematch(ctx context.Context, sessionID, requester string) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.store.Get(sessionID)
	if err != nil {
		return c.ignore(sessionID, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)), nil
	}
	if c.opts.Rematch == RematchNone {
		return c.ignore(sess.ID, ErrRematchDisabled), nil
	}
	if !sess.HasPlayer(requester) {
		return c.ignore(sess.ID, invalidMove(sess.ID, errNotParticipant)), nil
	}
	if sess.Outcome.Status == engine.StatusPending {
		return c.ignore(sess.ID, invalidMove(sess.ID, errNothingToRematch)), nil
	}

	res := &Result{Status: StatusApplied}
	c.resetSession(sess, res)
	res.Session = sess.Snapshot()
	return res, nil
}

// GetSession returns a snapshot of one session
func (c *Coordinator) GetSession(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.store.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return sess.Snapshot(), nil
}

// ListSessions returns snapshots of all sessions
func (c *Coordinator) ListSessions(ctx context.Context) ([]*SessionSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sessions := c.store.List()
	result := make([]*SessionSnapshot, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sess.Snapshot())
	}
	return result, nil
}

// DeleteSession tears a session down and cancels its pending reset
func (c *Coordinator) DeleteSession(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.store.Get(sessionID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	sess.cancelReset()
	return c.store.Delete(sess.ID)
}

// EvictIdle removes sessions untouched for longer than maxAge
func (c *Coordinator) EvictIdle(ctx context.Context, maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.store.CleanupExpiredSessions(maxAge)
	for _, sess := range removed {
		sess.cancelReset()
	}
	return len(removed)
}

func (c *Coordinator) touch(sess *Session) {
	if err := c.store.UpdateLastAccessed(sess.ID); err != nil {
		sess.LastAccessedAt = time.Now()
	}
}

// reject reports a failed create/join to the requester
func (c *Coordinator) reject(requester, sessionID string, err error) *Result {
	log.Printf("Rejected request from %s: %v", requester, err)
	res := &Result{Status: StatusRejected, Reason: err.Error(), Err: err}
	if requester != "" {
		c.emit(res, direct(requester, Event{
			Name:      EventError,
			SessionID: sessionID,
			Data:      ErrorData{Message: err.Error()},
		}))
	}
	return res
}

// ignore discards a move submission; nothing is sent to anyone
func (c *Coordinator) ignore(sessionID string, err error) *Result {
	log.Printf("[MOVE] session=%s ignored: %v", sessionID, err)
	return &Result{Status: StatusIgnored, Reason: err.Error(), Err: err}
}

// emit records deliveries on res (when non-nil) and hands them to the broadcaster
func (c *Coordinator) emit(res *Result, deliveries ...Delivery) {
	for _, d := range deliveries {
		if res != nil {
			res.Events = append(res.Events, d)
		}
		if c.out == nil {
			continue
		}
		if d.Broadcast {
			c.out.Broadcast(d.To, d.Event)
		} else {
			for _, to := range d.To {
				c.out.Send(to, d.Event)
			}
		}
	}
}

func direct(to string, ev Event) Delivery {
	return Delivery{To: []string{to}, Event: ev}
}

func broadcast(sess *Session, ev Event) Delivery {
	return Delivery{To: append([]string(nil), sess.Players...), Broadcast: true, Event: ev}
}
