// Package auth provides session token handling for deskchat.
//
// Clients obtain an HS256-signed JWT from the credential-issuance endpoint
// and present it when opening a websocket connection or calling the REST API.
// The token embeds the full principal (user ID, username, admin flag), so no
// database lookup is needed to authenticate a connection.
//
// Verification runs to completion before any other logic touches a
// connection; an unverifiable credential terminally rejects the connection.
//
//	verifier := auth.NewJWTVerifier(secret)
//	principal, err := verifier.Verify(tokenString)
//
// The token's embedded identity is authoritative: any user-id hint supplied
// alongside the credential is ignored.
package auth
