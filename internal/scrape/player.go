// Package scrape extracts tournament match links from a player's public
// results page.
package scrape

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"courtwatch/internal/track"
)

// resultsMarker is the section heading the match links follow.
const resultsMarker = "Tournament Results"

// userAgent mimics a regular browser; the results site blocks obvious
// bot fingerprints.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Lister fetches a player page and lists the match ids currently on it.
type Lister struct {
	client  *http.Client
	baseURL string
	slug    string
	logger  *slog.Logger
}

// NewLister creates a page lister for one player.
func NewLister(baseURL, slug string, timeout time.Duration, logger *slog.Logger) *Lister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lister{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		slug:    slug,
		logger:  logger,
	}
}

// List fetches the player page and returns the observed match ids in
// page order, deduplicated. The returned error marks a failed fetch or
// parse; callers should degrade to "nothing observed" rather than abort,
// but must not treat the page as empty for pruning purposes.
func (l *Lister) List(ctx context.Context) ([]track.Observation, error) {
	pageURL := l.baseURL + "/players/" + l.slug

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build player page request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch player page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch player page: unexpected status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "parse player page")
	}

	observations := l.extractResults(doc)
	l.logger.Debug("player page scraped", "url", pageURL, "matches", len(observations))
	return observations, nil
}

// extractResults walks the document and collects "Results" links that
// appear after the Tournament Results heading and carry a valid match
// UUID.
func (l *Lister) extractResults(doc *html.Node) []track.Observation {
	var (
		observations []track.Observation
		seen         = make(map[string]bool)
		afterMarker  bool
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if !afterMarker && n.Data == "div" && nodeText(n) == resultsMarker {
				afterMarker = true
			}
			if afterMarker && n.Data == "a" && nodeText(n) == "Results" {
				if id, href, ok := l.matchLink(n); ok && !seen[id] {
					seen[id] = true
					observations = append(observations, track.Observation{ID: id, URL: href})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return observations
}

// matchLink validates a results anchor and extracts the match id.
func (l *Lister) matchLink(n *html.Node) (id, href string, ok bool) {
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = attr.Val
			break
		}
	}

	const prefix = "/results/match/"
	idx := strings.Index(href, prefix)
	if idx < 0 {
		return "", "", false
	}

	id = href[idx+len(prefix):]
	parsed, err := uuid.Parse(id)
	if err != nil || len(id) != 36 {
		return "", "", false
	}
	id = parsed.String()

	if !strings.HasPrefix(href, "http") {
		href = l.baseURL + href[idx:]
	}
	return id, href, true
}

// nodeText returns the concatenated, whitespace-trimmed text content of
// a node.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(sb.String())
}
