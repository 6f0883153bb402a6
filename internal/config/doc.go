// Package config handles configuration loading for deskchat.
//
// # Configuration File
//
// Configuration is loaded from a YAML file, resolved in order:
//
//  1. Path from DESKCHAT_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/deskchat/deskchat.yaml
//  3. ~/.config/deskchat/deskchat.yaml
//
// # Format
//
//	server:
//	  http_addr: "localhost:8080"
//
//	database:
//	  path: "/var/lib/deskchat/deskchat.db"
//
//	auth:
//	  jwt_secret: "${DESKCHAT_JWT_SECRET}"
//	  token_ttl: "1h"
//
//	logging:
//	  level: "info"    # debug, info, warn, error
//	  format: "text"   # text (colorized) or json
//
//	static:
//	  dir: "./public"  # optional, served at "/"
//
// # Environment Variable Expansion
//
// Values of the form ${VAR_NAME} are replaced with the corresponding
// environment variable before parsing. Unset variables expand to the
// empty string.
//
// # Durations
//
// Duration fields use Go duration syntax ("30m", "1h"). auth.token_ttl
// defaults to one hour when omitted.
//
// # Validation
//
// Load fails when server.http_addr, database.path or auth.jwt_secret is
// missing, so a misconfigured server never starts half-wired.
package config
