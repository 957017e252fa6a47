// Package notify posts court-assignment alerts to a GroupMe group and
// decorates them with a livestream link when one is up.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"hash/fnv"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"courtwatch/internal/track"
)

// messageTemplates are the rotation of alert texts. The pick is a stable
// hash of the match id, so re-sends (if dedup were ever bypassed) would
// at least repeat the same wording.
var messageTemplates = []string{
	"🏓 %PLAYER% has been assigned to Court %COURT% and will be starting soon!",
	"🎾 Court %COURT% is ready for %PLAYER% - match starting soon!",
	"⚡ %PLAYER% is heading to Court %COURT% - get ready for some action!",
	"🔥 %PLAYER% has been assigned to Court %COURT% - the match is about to begin!",
	"🏆 Court %COURT% awaits %PLAYER% - the match starts soon!",
	"🚀 %PLAYER% has been assigned to Court %COURT% - the excitement begins now!",
}

// Notifier posts alerts through a GroupMe bot.
type Notifier struct {
	client     *http.Client
	apiURL     string
	botID      string
	playerName string
	streams    *StreamChecker // nil disables livestream lookups
	logger     *slog.Logger
}

// NewNotifier creates a GroupMe notifier for the given player slug.
func NewNotifier(apiURL, botID, playerSlug string, streams *StreamChecker, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		client:     &http.Client{Timeout: 10 * time.Second},
		apiURL:     apiURL,
		botID:      botID,
		playerName: displayName(playerSlug),
		streams:    streams,
		logger:     logger,
	}
}

// Notify sends one court-assignment alert. Stream lookup failures
// degrade to the bare message; only the GroupMe post itself can fail.
func (n *Notifier) Notify(ctx context.Context, ev track.Event) error {
	message := n.composeMessage(ctx, ev)

	payload, err := json.Marshal(map[string]string{
		"bot_id": n.botID,
		"text":   message,
	})
	if err != nil {
		return errors.Wrap(err, "marshal groupme payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build groupme request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "courtwatch/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "post notification for match %s", ev.ID)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.Errorf("post notification for match %s: unexpected status %d", ev.ID, resp.StatusCode)
	}

	n.logger.Info("notification sent",
		"match_id", ev.ID,
		"court", ev.Court,
		"player", n.playerName)
	return nil
}

// composeMessage builds the alert text: template, then either a live
// stream link or the TV fallback line.
func (n *Notifier) composeMessage(ctx context.Context, ev track.Event) string {
	base := messageTemplates[templateIndex(ev.ID, len(messageTemplates))]
	base = strings.ReplaceAll(base, "%PLAYER%", n.playerName)
	base = strings.ReplaceAll(base, "%COURT%", ev.Court)

	if n.streams == nil {
		return base
	}

	streamURL, err := n.streams.FindLiveStream(ctx, ev.Court)
	if err != nil {
		n.logger.Warn("stream lookup failed, sending bare message",
			"court", ev.Court, "error", err)
		return base
	}
	if streamURL != "" {
		return base + "\n\n📺 LIVE STREAM: " + streamURL
	}
	return base + FallbackLine(ev.Court)
}

// templateIndex picks a template deterministically from the match id.
func templateIndex(id string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32() % uint32(n))
}

// displayName turns a player slug into a readable name,
// "adam-harvey" -> "Adam Harvey".
func displayName(slug string) string {
	name := strings.ReplaceAll(slug, "-", " ")
	return cases.Title(language.English).String(name)
}
