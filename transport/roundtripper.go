// Package transport attaches the session's bearer token to outgoing requests and recovers
// from an expired token with one refresh and one retry.
package transport

import (
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
)

type RoundTripper struct {
	session   Session
	transport http.RoundTripper
}

func New(session Session, options ...Option) *RoundTripper {
	ret := &RoundTripper{
		session:   session,
		transport: http.DefaultTransport,
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Client returns an http.Client using the round tripper
func Client(session Session, options ...Option) *http.Client {
	return &http.Client{Transport: New(session, options...)}
}

func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	// 1) Send with the current token.
	sent := r.session.AccessToken()
	resp, err := r.transport.RoundTrip(clone(req, body, sent))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// 2) Nothing to recover without a session.
	current := r.session.AccessToken()
	if sent == "" && current == "" {
		return resp, nil
	}
	drain(resp)

	// 3) Refresh unless another caller already replaced the token.
	ctx := req.Context()
	if current == "" || current == sent {
		if err := r.session.Refresh(ctx); err != nil {
			log.Debug().Err(err).Str("url", req.URL.String()).Msg("refresh after 401 failed")
			return nil, fmt.Errorf("%s %s: %w: %w", req.Method, req.URL.Path, apperrors.ErrUnauthorized, err)
		}
		current = r.session.AccessToken()
		if current == "" {
			return nil, apperrors.Wrapf(apperrors.ErrUnauthorized, "%s %s: signed out", req.Method, req.URL.Path)
		}
	}

	// 4) Replay exactly once.
	return r.transport.RoundTrip(clone(req, body, current))
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}
