// Package common contains shared constants and sentinel errors used across
// Character Studio components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// UserUploadsPrefix is the root of every per-user upload key in object storage.
const UserUploadsPrefix = "user_uploads"
