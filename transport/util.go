package transport

import (
	"bytes"
	"io"
	"net/http"
)

// bufferBody reads the body once so the request can be replayed
func bufferBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func clone(r *http.Request, body []byte, accessToken string) *http.Request {
	cloned := r.Clone(r.Context())
	if body != nil {
		cloned.Body = io.NopCloser(bytes.NewReader(body))
		cloned.ContentLength = int64(len(body))
		cloned.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}
	if accessToken != "" {
		cloned.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		cloned.Header.Del("Authorization")
	}
	return cloned
}
