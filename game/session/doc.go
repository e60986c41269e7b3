// Package session provides session storage for the duel game server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Expiration of idle sessions
//
// Core Types:
//
// Manager is the in-memory store of active sessions, keyed case-insensitively
// by ID. It owns data only: the rules that mutate a session live in the
// service package, which is the single writer of session state.
//
// Session Identifiers:
//
// Sessions use 6-character lowercase base36 IDs drawn from crypto/rand.
// IDGenerator checks each candidate against the store and retries on a
// collision, growing the ID after repeated collisions.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", engine.KindGrid)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Cleanup:
//
// CleanupExpiredSessions removes sessions idle longer than a cutoff and
// returns them so the caller can cancel their pending timers.
package session
