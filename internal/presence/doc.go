// Package presence tracks which users currently have an active connection.
//
// The Directory is the single piece of state shared across all connection
// handlers and is safe for arbitrary interleavings of Register, Unregister,
// Lookup and Snapshot. It is mutated only by the connection gate; the message
// router holds a read-only view. A second connection for the same user
// supersedes the first (last-connect-wins), and Unregister refuses stale
// handles so an old connection closing late cannot knock a newer session
// offline.
package presence
