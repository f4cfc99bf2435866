package providers

import "time"

const (
	// shutdownTimeout bounds graceful shutdown of the HTTP server and databases.
	shutdownTimeout = 30 * time.Second

	// sessionCleanupInterval is how often expired account sessions and reset
	// tokens are pruned.
	sessionCleanupInterval = time.Hour
)
