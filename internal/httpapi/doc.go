// Package httpapi exposes the REST endpoints surrounding the real-time core.
//
// # Endpoints
//
//   - POST /api/auth/register - Create a regular user account
//   - POST /api/auth/login - Verify credentials, mint a session token
//   - GET /api/users - List regular users (admin only)
//   - GET /api/messages - Conversation history for one admin/user pair
//   - GET /ws - Websocket handshake, handled by the chat gate
//
// Registration never grants the admin role; the admin account is created by
// the bootstrap-admin command. Login is constant-time against unknown
// usernames via a dummy bcrypt comparison.
//
// History access is asymmetric: the admin selects a thread with ?with=<id>,
// while a regular user always reads their own admin thread regardless of
// parameters.
package httpapi
