// Package config loads runtime configuration for the Character Studio CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed with CHARSTUDIO_ (see parseEnv).
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     address:port of the backend gRPC endpoint
//	-k string     access token sent with every call
//	-r duration   delay before the result view opens for a ready character
//	-t duration   timeout of a single unary call
//
// # JSON schema
//
// Durations are timex.Duration values, so both "1.5s" and integer
// nanoseconds are accepted:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "access_token": "eyJ...",
//	  "ready_delay": "1.5s",
//	  "request_timeout": "2m"
//	}
package config
