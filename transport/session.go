package transport

import "context"

// Session supplies tokens. sessions.Store implements it.
type Session interface {
	AccessToken() string
	Refresh(ctx context.Context) error
}
