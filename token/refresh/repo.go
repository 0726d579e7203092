package refresh

import (
	"time"
)

// StoredRefreshToken is the server-side record behind an opaque refresh token.
// The client only receives Token.
type StoredRefreshToken struct {
	Token  string    // The random token string sent to the client
	UserID string    // Owner
	Iat    time.Time // Issued at, used for expiry
}

// Repo stores refresh token metadata keyed by the token string. A user holds at most one
// refresh token.
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(token string) error
	Get(token string) (*StoredRefreshToken, error)
	GetByUserID(userID string) (*StoredRefreshToken, error)
	List(offset, limit int) ([]*StoredRefreshToken, error)
}
