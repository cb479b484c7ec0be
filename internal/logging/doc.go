// Package logging provides structured logging for the coordination layer.
//
// It wraps Go's log/slog to produce JSON-formatted logs suitable for
// post-hoc analysis of multi-agent sessions. Loggers carry persistent
// context (team name, agent name) via child loggers created with the
// With* methods, so every entry from a teammate's workflow is filterable
// by team and agent.
//
// Create a logger for a coordination root:
//
//	logger, err := logging.NewLogger("/path/to/root", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	teamLogger := logger.WithTeam("demo").WithAgent("alice")
//	teamLogger.Info("task claimed", "task_id", "t-1")
//
// For testing, use [NopLogger] to discard all output.
package logging
