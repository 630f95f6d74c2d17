// Package logging provides structured logging with per-module log levels.
//
// # Usage
//
// Initialize once at startup, then ask for a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"panel": "debug",
//			"api":   "warn",
//		},
//	})
//
//	logger := logging.GetLogger("panel")
//	logger.Info("Panel initialized", "digits", 2)
//
// Module loggers created before Initialize are rebuilt by it, so package-level
// loggers are safe. Levels can be changed later with SetLevels; the running
// daemon does this when its config file is edited.
//
// # Outputs
//
// Every record goes to up to three places:
//
//	stdout       text or json, when stdout is a terminal, pipe, socket or file
//	journal      when journald is reachable, tagged SYSLOG_IDENTIFIER=segpanel
//	ring buffer  last 1000 entries, replayed to /api/logs/stream clients
//
// Journal fields are upper-cased attribute keys, so records can be filtered:
//
//	journalctl -t segpanel MODULE=panel
//	journalctl -t segpanel -p err
package logging
