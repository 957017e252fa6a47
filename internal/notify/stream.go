package notify

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// StreamChecker searches the tournament's YouTube channel for a live
// stream of a given court.
type StreamChecker struct {
	client    *http.Client
	searchURL string
	logger    *slog.Logger
}

// NewStreamChecker creates a checker against the channel search URL,
// e.g. "https://www.youtube.com/@PPAStreamedCourts/search".
func NewStreamChecker(searchURL string, logger *slog.Logger) *StreamChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamChecker{
		client:    &http.Client{Timeout: 15 * time.Second},
		searchURL: searchURL,
		logger:    logger,
	}
}

// FindLiveStream returns the watch URL of a live stream for the court,
// or "" when none is live. Absence is a normal outcome, not an error.
func (s *StreamChecker) FindLiveStream(ctx context.Context, court string) (string, error) {
	searchURL := s.searchURL + "?query=" + url.QueryEscape(court)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "build stream search request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "search stream for court %s", court)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("search stream for court %s: unexpected status %d", court, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "parse stream search results")
	}

	section := findElement(doc, "ytd-item-section-renderer", "", "")
	if section == nil {
		s.logger.Debug("no search results for court", "court", court)
		return "", nil
	}

	// A live result shows a viewer count ("N watching") in its metadata
	// line; finished videos show view counts instead.
	meta := findElement(section, "div", "id", "metadata-line")
	if meta == nil || !strings.Contains(strings.ToLower(nodeText(meta)), "watching") {
		return "", nil
	}

	thumb := findElement(section, "a", "id", "thumbnail")
	if thumb == nil {
		return "", nil
	}
	href := attrValue(thumb, "href")
	if !strings.HasPrefix(href, "/watch?v=") {
		return "", nil
	}

	videoID := strings.TrimPrefix(href, "/watch?v=")
	if i := strings.IndexByte(videoID, '&'); i >= 0 {
		videoID = videoID[:i]
	}
	return "https://www.youtube.com/watch?v=" + videoID, nil
}

// FallbackLine is appended to the alert when no live stream was found.
// Championship court is free to watch; the rest sit behind a login.
func FallbackLine(court string) string {
	if court == "CC" {
		return " (free to watch on PickleballTV)"
	}
	return " (on PickleballTV - login required)"
}

// findElement does a depth-first search for the first element with the
// given tag, optionally requiring an attribute value.
func findElement(n *html.Node, tag, attrKey, attrVal string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		if attrKey == "" || attrValue(n, attrKey) == attrVal {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag, attrKey, attrVal); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
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
