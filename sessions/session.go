package sessions

import (
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-salvage-market/users"
)

// State is an immutable copy of the session. Token and User are both nil or both set.
type State struct {
	Token *oauth2.Token // Access and refresh token pair
	User  *users.User   // Signed in user; minimal until a profile fetch completes
}

func (s State) IsAuthenticated() bool {
	return s.Token != nil && s.Token.AccessToken != "" && s.User != nil
}

func (s State) AccessToken() string {
	if s.Token == nil {
		return ""
	}
	return s.Token.AccessToken
}

func (s State) RefreshToken() string {
	if s.Token == nil {
		return ""
	}
	return s.Token.RefreshToken
}

func (s State) clone() State {
	var ret State
	if s.Token != nil {
		t := *s.Token
		ret.Token = &t
	}
	if s.User != nil {
		u := *s.User
		ret.User = &u
	}
	return ret
}
