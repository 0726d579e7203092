package vehicles

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
)

func TestClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case VehiclesPath:
			require.Equal(t, "10", r.URL.Query().Get("limit"))
			_ = json.NewEncoder(w).Encode([]Vehicle{{ID: "a"}, {ID: "b"}})
		case VehiclesPath + "/a":
			_ = json.NewEncoder(w).Encode(Vehicle{ID: "a", Make: "Toyota", Model: "Corolla", Year: 2019})
		case VehiclesPath + "/broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", nil)
	ctx := context.Background()

	v, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "2019 Toyota Corolla", v.Title())

	list, err := c.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = c.Get(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = c.Get(ctx, "broken")
	require.ErrorIs(t, err, apperrors.ErrServer)
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).Get(context.Background(), "a")
	require.ErrorIs(t, err, apperrors.ErrNetwork)
}
