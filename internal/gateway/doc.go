// Package gateway orchestrates the deskchat server components.
//
// The Gateway owns the SQLite store, the token verifier, the presence
// directory, the message router, the websocket gate and the REST API, all
// served from a single HTTP listener.
//
// # Lifecycle
//
// Start the gateway:
//
//	gw, err := gateway.New(cfg, logger)
//	err = gw.Run(ctx)
//
// Run blocks until ctx is cancelled or the server fails, then shuts down
// gracefully: the HTTP server first (force-closing websockets that outlive
// the grace period), the store last.
package gateway
