package vehicles

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
)

const VehiclesPath = "/api/vehicles"

// Client reads listings from the Car Listing service
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *Client) Get(ctx context.Context, id string) (*Vehicle, error) {
	var v Vehicle
	if err := c.get(ctx, VehiclesPath+"/"+url.PathEscape(id), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) List(ctx context.Context, offset, limit int) ([]Vehicle, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	var list []Vehicle
	if err := c.get(ctx, VehiclesPath+"?"+q.Encode(), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "build GET %s: %v", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w: %w", path, apperrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.Wrapf(apperrors.ErrNotFound, "GET %s", path)
	case resp.StatusCode >= 500:
		return apperrors.Wrapf(apperrors.ErrServer, "GET %s (%d)", path, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "GET %s (%d)", path, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 16<<20)).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w: %w", path, apperrors.ErrServer, err)
	}
	return nil
}
