// Package horizons implements a SampleSource backed by a Horizons-style
// HTTP ephemeris sample service.
//
// The service contract is a single endpoint returning CSV rows of
// "timestamp,value" pairs, one per sample step, where timestamps are
// RFC 3339 and values are decimal degrees or AU depending on the quantity.
// Transport and decoding failures are wrapped in errs.ErrSourceUnavailable
// so the generator's retry policy can treat them uniformly.
package horizons

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ephemeralab/mpeph/errs"
	"github.com/ephemeralab/mpeph/format"
	"github.com/ephemeralab/mpeph/internal/options"
	"github.com/ephemeralab/mpeph/mpfile"
)

const defaultTimeout = 30 * time.Second

// Client fetches ephemeris samples over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ mpfile.SampleSource = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption = options.Option[*Client]

// WithHTTPClient replaces the default HTTP client, e.g. to add a transport
// with connection pooling limits or an instrumented round tripper.
func WithHTTPClient(hc *http.Client) ClientOption {
	return options.New(func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.httpClient = hc

		return nil
	})
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return options.New(func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		c.httpClient.Timeout = d

		return nil
	})
}

// NewClient creates a Client for the sample service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// Samples implements mpfile.SampleSource.
//
// The request encodes the body and quantity by name and the span as RFC 3339
// timestamps with the step in seconds:
//
//	GET {base}/samples?body=mars&quantity=ecliptic-longitude&
//	    start=2024-01-01T00:00:00Z&end=2024-02-01T00:00:00Z&step=86400
func (c *Client) Samples(ctx context.Context, body format.Body, quantity format.Quantity, start, end time.Time, step time.Duration) ([]mpfile.Sample, error) {
	q := url.Values{}
	q.Set("body", body.String())
	q.Set("quantity", quantity.String())
	q.Set("start", start.UTC().Format(time.RFC3339Nano))
	q.Set("end", end.UTC().Format(time.RFC3339Nano))
	q.Set("step", strconv.FormatInt(int64(step/time.Second), 10))

	reqURL := c.baseURL + "/samples?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", errs.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", errs.ErrSourceUnavailable, resp.StatusCode, c.baseURL)
	}

	samples, err := parseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrSourceUnavailable, err)
	}

	return samples, nil
}

// parseCSV decodes "timestamp,value" rows. Blank lines and a leading header
// row of "timestamp,value" are skipped; anything else malformed is an error.
func parseCSV(r io.Reader) ([]mpfile.Sample, error) {
	var samples []mpfile.Sample

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text == "timestamp,value" {
			continue
		}

		ts, val, ok := strings.Cut(text, ",")
		if !ok {
			return nil, fmt.Errorf("malformed row %d: %q", line, text)
		}

		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(ts))
		if err != nil {
			return nil, fmt.Errorf("malformed timestamp on row %d: %w", line, err)
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed value on row %d: %w", line, err)
		}

		if n := len(samples); n > 0 && !t.After(samples[n-1].Time) {
			return nil, fmt.Errorf("non-increasing timestamp on row %d", line)
		}

		samples = append(samples, mpfile.Sample{Time: t, Value: v})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return samples, nil
}
