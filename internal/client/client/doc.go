// Package client is the gRPC client of the Character Studio server.
//
// GRPCClient owns the connection, attaches the access token to every unary
// and streaming call, applies a per-call timeout to unary calls and maps
// common status codes to the sentinel errors in this package, so callers
// can match them with errors.Is.
package client
