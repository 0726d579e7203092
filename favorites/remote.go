package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-salvage-market/authmodel"
	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
	"github.com/jrsteele09/go-salvage-market/vehicles"
)

const FavoritesPath = "/api/favorites"

// HTTPRemote is the Favorites Service client. The http.Client is expected to carry the
// session's authenticating transport.
type HTTPRemote struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRemote(baseURL string, client *http.Client) *HTTPRemote {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRemote{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (r *HTTPRemote) List(ctx context.Context) ([]vehicles.Vehicle, error) {
	var items []vehicles.Vehicle
	if err := r.do(ctx, http.MethodGet, FavoritesPath, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *HTTPRemote) Add(ctx context.Context, vehicle vehicles.Vehicle) error {
	return r.do(ctx, http.MethodPost, FavoritesPath, authmodel.FavoriteRequest{VehicleID: vehicle.ID}, nil)
}

func (r *HTTPRemote) Remove(ctx context.Context, vehicleID string) error {
	return r.do(ctx, http.MethodDelete, FavoritesPath+"/"+url.PathEscape(vehicleID), nil, nil)
}

func (r *HTTPRemote) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return apperrors.Wrapf(apperrors.ErrInvalidRequest, "encode: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "build %s %s: %v", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("%s %s: %w: %w", method, path, apperrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e authmodel.ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		return fmt.Errorf("%s %s: %w (%d) %s", method, path, statusKind(resp.StatusCode), resp.StatusCode, e.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w: %w", method, path, apperrors.ErrServer, err)
	}
	return nil
}

func statusKind(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.ErrUnauthorized
	case status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case status >= 500:
		return apperrors.ErrServer
	default:
		return apperrors.ErrInvalidRequest
	}
}
