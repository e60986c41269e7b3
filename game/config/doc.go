// Package config loads the coordinator policies for the duel game server.
//
// Sources are applied in order, later ones winning:
//   - Built-in defaults (2s round reset, no rematch, 24h session TTL)
//   - An optional JSON file passed with --config
//   - DUEL_* environment variables, including those loaded from .env
//
// Configuration Format:
//
//	{
//	  "round_reset_delay": "2s",
//	  "rematch_policy": "explicit",
//	  "session_ttl": "12h",
//	  "cleanup_interval": "30m"
//	}
//
// Usage:
//
//	cfg, err := config.Load(path)
//	if err != nil {
//		log.Fatal(err)
//	}
//	coord := service.NewCoordinator(store, hub, cfg.CoordinatorOptions())
package config
