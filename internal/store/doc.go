// Package store provides persistent storage for deskchat using SQLite.
//
// # Data Models
//
//   - User: An account that can authenticate and exchange messages. At most
//     one account carries the admin flag at routing time.
//   - Message: A persisted chat message. RecipientID is always a concrete
//     user ID; the routing rule is applied before persistence.
//
// # SQLite Configuration
//
// The store uses modernc.org/sqlite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Timestamps are stored as RFC3339Nano TEXT, assigned server-side when the
// caller leaves them zero. The schema is created automatically on open.
//
// # Error Handling
//
// Common errors:
//
//   - ErrUserNotFound: Requested user does not exist
//   - ErrUsernameExists: Username is already taken
//   - ErrNoAdmin: No account is flagged as admin
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewMockStore() for unit tests; it implements the full Store interface
// in memory and can inject persistence failures via SaveMessageErr.
package store
