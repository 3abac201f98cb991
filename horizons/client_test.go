package horizons

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ephemeralab/mpeph/errs"
	"github.com/ephemeralab/mpeph/format"
)

func TestClient_Samples(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Parses CSV response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/samples", r.URL.Path)
			require.Equal(t, "mars", r.URL.Query().Get("body"))
			require.Equal(t, "ecliptic-longitude", r.URL.Query().Get("quantity"))
			require.Equal(t, "86400", r.URL.Query().Get("step"))

			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte(
				"timestamp,value\n" +
					"2024-01-01T00:00:00Z,120.5\n" +
					"2024-01-02T00:00:00Z,121.25\n"))
		}))
		defer srv.Close()

		client, err := NewClient(srv.URL)
		require.NoError(t, err)

		samples, err := client.Samples(context.Background(),
			format.BodyMars, format.EclipticLongitude,
			start, start.AddDate(0, 0, 1), 24*time.Hour)
		require.NoError(t, err)
		require.Len(t, samples, 2)
		require.Equal(t, start, samples[0].Time)
		require.InDelta(t, 120.5, samples[0].Value, 1e-12)
	})

	t.Run("Server error wraps source unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		}))
		defer srv.Close()

		client, err := NewClient(srv.URL)
		require.NoError(t, err)

		_, err = client.Samples(context.Background(),
			format.BodyMars, format.EclipticLongitude, start, start.AddDate(0, 0, 1), time.Hour)
		require.ErrorIs(t, err, errs.ErrSourceUnavailable)
	})

	t.Run("Unreachable host", func(t *testing.T) {
		client, err := NewClient("http://127.0.0.1:1", WithTimeout(200*time.Millisecond))
		require.NoError(t, err)

		_, err = client.Samples(context.Background(),
			format.BodyMars, format.EclipticLongitude, start, start.AddDate(0, 0, 1), time.Hour)
		require.ErrorIs(t, err, errs.ErrSourceUnavailable)
	})

	t.Run("Malformed rows rejected", func(t *testing.T) {
		for name, body := range map[string]string{
			"missing comma":  "2024-01-01T00:00:00Z 120.5\n",
			"bad timestamp":  "yesterday,120.5\n",
			"bad value":      "2024-01-01T00:00:00Z,very-far\n",
			"non-increasing": "2024-01-02T00:00:00Z,1\n2024-01-01T00:00:00Z,2\n",
		} {
			t.Run(name, func(t *testing.T) {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte(body))
				}))
				defer srv.Close()

				client, err := NewClient(srv.URL)
				require.NoError(t, err)

				_, err = client.Samples(context.Background(),
					format.BodyMars, format.EclipticLongitude, start, start.AddDate(0, 0, 1), time.Hour)
				require.ErrorIs(t, err, errs.ErrSourceUnavailable)
			})
		}
	})

	t.Run("Context cancellation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		client, err := NewClient(srv.URL)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err = client.Samples(ctx,
			format.BodyMars, format.EclipticLongitude, start, start.AddDate(0, 0, 1), time.Hour)
		require.Error(t, err)
	})
}

func TestNewClient(t *testing.T) {
	t.Run("Trailing slash trimmed", func(t *testing.T) {
		client, err := NewClient("http://example.com/")
		require.NoError(t, err)
		require.Equal(t, "http://example.com", client.baseURL)
	})

	t.Run("Nil http client rejected", func(t *testing.T) {
		_, err := NewClient("http://example.com", WithHTTPClient(nil))
		require.Error(t, err)
	})

	t.Run("Non-positive timeout rejected", func(t *testing.T) {
		_, err := NewClient("http://example.com", WithTimeout(0))
		require.Error(t, err)
	})
}
