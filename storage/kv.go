// Package storage provides the durable key value store the client stores persist to.
package storage

import "context"

// Keys written by the session and favorites stores
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyFavorites    = "favorites"
)

// KV is a durable string key value store. Get reports ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
