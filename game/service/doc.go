// Package service coordinates two-player game sessions.
//
// The service package implements:
//   - Session lifecycle: create, join, inspect, delete and idle eviction
//   - Move validation and application for grid and simultaneous games
//   - Delayed round resets and optional rematches
//   - Event routing to connected players
//
// Core Types:
//
// Coordinator is the single writer of session state and implements
// GameService. SessionStore holds the sessions, Broadcaster delivers events
// and Scheduler arms the round reset timers.
//
// Move submissions never fail loudly: an illegal move leaves the session
// untouched, emits nothing and comes back as an ignored Result whose Err
// says why. Failed creates and joins return an error and send a directed
// error event to the requester.
//
// Usage:
//
//	store := session.NewManager()
//	coord := service.NewCoordinator(store, hub, service.Options{
//		RoundResetDelay: 2 * time.Second,
//		Rematch:         service.RematchExplicit,
//	})
//
//	res, err := coord.CreateSession(ctx, "grid", connID)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, _ = coord.SubmitGridMove(ctx, res.Session.ID, connID, "X", 4)
package service
