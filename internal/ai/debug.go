package ai

import "sync/atomic"

// debugLoggingEnabled gates per-tick debug logs of the AI loop, which run for
// every NPC every tick.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging toggles AI debug logs. Called once from main after the
// log level is known.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("npc moved", "npcID", id, "to", dest)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
