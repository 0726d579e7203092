package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

const fileMode = 0o600

// AFS keeps one object per key under a base URL. Any afs scheme works; file:// for the CLI,
// mem:// for tests.
type AFS struct {
	mu      sync.Mutex
	fs      afs.Service
	baseURL string
}

type AFSOption func(*AFS)

// WithService overrides the afs service, mainly for tests sharing one in-memory tree
func WithService(fs afs.Service) AFSOption {
	return func(a *AFS) {
		a.fs = fs
	}
}

func NewAFS(baseURL string, options ...AFSOption) *AFS {
	ret := &AFS{
		fs:      afs.New(),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

func (a *AFS) keyURL(key string) string {
	return url.Join(a.baseURL, key)
}

func (a *AFS) Get(ctx context.Context, key string) (string, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	URL := a.keyURL(key)
	ok, err := a.fs.Exists(ctx, URL)
	if err != nil {
		return "", false, errors.Wrapf(err, "[AFS.Get] exists %s", key)
	}
	if !ok {
		return "", false, nil
	}
	data, err := a.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return "", false, errors.Wrapf(err, "[AFS.Get] download %s", key)
	}
	return string(data), true, nil
}

func (a *AFS) Set(ctx context.Context, key, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.fs.Upload(ctx, a.keyURL(key), fileMode, strings.NewReader(value)); err != nil {
		return errors.Wrapf(err, "[AFS.Set] upload %s", key)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (a *AFS) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	URL := a.keyURL(key)
	ok, err := a.fs.Exists(ctx, URL)
	if err != nil {
		return errors.Wrapf(err, "[AFS.Delete] exists %s", key)
	}
	if !ok {
		return nil
	}
	if err := a.fs.Delete(ctx, URL); err != nil {
		return errors.Wrapf(err, "[AFS.Delete] delete %s", key)
	}
	return nil
}
