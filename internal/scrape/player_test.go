package scrape

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtwatch/internal/logging"
)

const playerPage = `<!DOCTYPE html>
<html><body>
<div class="nav"><a href="/players/adam-harvey">Profile</a></div>
<div>Upcoming Events</div>
<a href="/results/match/99999999-9999-9999-9999-999999999999">Results</a>
<div>Tournament Results</div>
<div class="results">
  <a href="/results/match/11111111-2222-3333-4444-555555555555">Results</a>
  <a href="/results/match/66666666-7777-8888-9999-000000000000">Results</a>
  <a href="/results/match/11111111-2222-3333-4444-555555555555">Results</a>
  <a href="/results/match/not-a-uuid">Results</a>
  <a href="/results/match/aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee">Bracket</a>
  <a href="/some/other/link">Results</a>
</div>
</body></html>`

func newTestLister(t *testing.T, handler http.HandlerFunc) *Lister {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := logging.NewWithWriter(io.Discard, "error")
	return NewLister(srv.URL, "adam-harvey", 2*time.Second, logger)
}

func TestLister_List(t *testing.T) {
	var gotPath string
	lister := newTestLister(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(playerPage))
	})

	observed, err := lister.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/players/adam-harvey", gotPath)

	// Only valid-UUID "Results" links after the Tournament Results
	// marker count, deduplicated, in page order. The link before the
	// marker and the non-Results anchor are skipped.
	require.Len(t, observed, 2)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", observed[0].ID)
	assert.Equal(t, "66666666-7777-8888-9999-000000000000", observed[1].ID)
	assert.Contains(t, observed[0].URL, "/results/match/11111111-2222-3333-4444-555555555555")
}

func TestLister_List_SetsUserAgent(t *testing.T) {
	var ua string
	lister := newTestLister(t, func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Write([]byte(playerPage))
	})

	_, err := lister.List(context.Background())
	require.NoError(t, err)
	assert.Contains(t, ua, "Mozilla/5.0")
}

func TestLister_List_MissingMarker(t *testing.T) {
	lister := newTestLister(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/results/match/11111111-2222-3333-4444-555555555555">Results</a></body></html>`))
	})

	observed, err := lister.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, observed)
}

func TestLister_List_ServerError(t *testing.T) {
	lister := newTestLister(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := lister.List(context.Background())
	assert.Error(t, err)
}

func TestLister_List_Unreachable(t *testing.T) {
	logger := logging.NewWithWriter(io.Discard, "error")
	lister := NewLister("http://127.0.0.1:1", "adam-harvey", 500*time.Millisecond, logger)

	_, err := lister.List(context.Background())
	assert.Error(t, err)
}
