// Package chat implements the real-time core of deskchat: the connection
// gate, the presence-aware message router, and the websocket wire events.
//
// # Connection lifecycle
//
// Each connection moves through four states:
//
//	Unauthenticated → Authenticated → Registered → Disconnected
//
// The session token is verified before the websocket upgrade, so an invalid
// credential is rejected with HTTP 401 and never produces a connection. After
// registration the admin, if online, is notified of the user's presence; a
// newly connected admin instead receives a snapshot of everyone online.
//
// # Routing
//
// Regular users always address the admin; any client-supplied recipient is
// ignored. The admin must name an existing user. The resolved recipient is
// concrete before persistence, and durability strictly precedes delivery.
//
// # Failure semantics
//
// Message-level failures (no admin, invalid recipient, empty text, persist
// failure) are converted into a messagingError event for the sender and never
// terminate the connection. Delivery to an offline party is skipped silently.
// Presence notifications are best-effort with no queue or retry.
package chat
