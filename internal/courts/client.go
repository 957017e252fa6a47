// Package courts queries the results API for court assignments.
package courts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"courtwatch/internal/track"
)

// matchInfoResponse mirrors the relevant slice of the
// getResultMatchInfos payload. Anything beyond court_title and
// match_completed is ignored.
type matchInfoResponse struct {
	Data []struct {
		CourtTitle     string          `json:"court_title"`
		MatchCompleted json.RawMessage `json:"match_completed"`
	} `json:"data"`
}

// Client looks up court assignments for match ids. Lookups are paced:
// successive calls are separated by at least the configured delay, a
// courtesy rate limit toward the results API.
type Client struct {
	client   *http.Client
	baseURL  string
	delay    time.Duration
	lastCall time.Time
	logger   *slog.Logger
}

// NewClient creates a court-lookup client.
func NewClient(baseURL string, timeout, delay time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		delay:   delay,
		logger:  logger,
	}
}

// Lookup fetches the court assignment for one match id.
//
// A response without a court (empty label, empty data array, or a shape
// we don't recognize) returns a zero Assignment and no error: "no court
// yet" is a normal outcome. Errors are reserved for transient transport
// failures, which the caller treats as "retry next run".
func (c *Client) Lookup(ctx context.Context, id string) (track.Assignment, error) {
	if err := c.pace(ctx); err != nil {
		return track.Assignment{}, err
	}

	url := c.baseURL + "/api/v1/results/getResultMatchInfos?id=" + id

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return track.Assignment{}, errors.Wrap(err, "build lookup request")
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return track.Assignment{}, errors.Wrapf(err, "lookup court for %s", id)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return track.Assignment{}, errors.Errorf("lookup court for %s: unexpected status %d", id, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return track.Assignment{}, errors.Wrapf(err, "read lookup response for %s", id)
	}

	var parsed matchInfoResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Data) == 0 {
		// Malformed or empty payload reads as "no court yet".
		c.logger.Debug("lookup returned no usable data", "match_id", id)
		return track.Assignment{}, nil
	}

	info := parsed.Data[0]
	return track.Assignment{
		Court:     strings.TrimSpace(info.CourtTitle),
		Completed: truthy(info.MatchCompleted),
	}, nil
}

// pace blocks until the minimum inter-call delay has elapsed since the
// previous lookup.
func (c *Client) pace(ctx context.Context) error {
	if c.delay <= 0 || c.lastCall.IsZero() {
		c.lastCall = time.Now()
		return nil
	}
	wait := c.delay - time.Since(c.lastCall)
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.lastCall = time.Now()
	return nil
}

// truthy reports whether a loosely typed JSON field carries a value. The
// API sends match_completed as null, a bool, or a timestamp string
// depending on match state.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0:
		return false
	case bytes.Equal(raw, []byte("null")), bytes.Equal(raw, []byte("false")):
		return false
	case bytes.Equal(raw, []byte(`""`)), bytes.Equal(raw, []byte("0")):
		return false
	}
	return true
}

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
