// Package httptracker implements the client side of the HTTP tracker
// protocols: announce (BEP 3) and scrape (BEP 48) share one transport
// session that differs only in the parameters it sends and the decoder
// it hands the body to.
package httptracker

import (
	"context"
	"net/url"
	"sync"

	"github.com/avelis/trackwire/internal/log"
	"github.com/avelis/trackwire/internal/tracker"
	"github.com/avelis/trackwire/pkg/urlutil"
)

type HTTPTracker struct {
	rawURL string
	url    *url.URL
	log    *log.Logger

	announce *Session[tracker.AnnounceRequest, *tracker.AnnounceResponse]
	scrape   *Session[[]tracker.InfoHash, *tracker.ScrapeResponse]

	mu        sync.Mutex
	trackerID string
}

var (
	_ tracker.Tracker = (*HTTPTracker)(nil)
	_ tracker.Scraper = (*HTTPTracker)(nil)
)

func New(rawURL string, u *url.URL, cfg SessionConfig, logger *log.Logger) *HTTPTracker {
	t := &HTTPTracker{
		rawURL: rawURL,
		url:    u,
		log:    logger,
	}
	t.announce = NewSession(
		func() (*url.URL, error) { return urlutil.CopyURL(t.url), nil },
		t.announceParams,
		decodeAnnounce,
		cfg,
		logger,
	)
	t.scrape = NewSession(
		func() (*url.URL, error) { return ScrapeURL(t.url) },
		scrapeParams,
		decodeScrape,
		cfg,
		logger,
	)
	return t
}

func (t *HTTPTracker) URL() string {
	return t.rawURL
}

// Announce runs one announce exchange. The session stays reusable after
// a success; any terminal failure leaves it closed.
func (t *HTTPTracker) Announce(ctx context.Context, req tracker.AnnounceRequest) (*tracker.AnnounceResponse, error) {
	resp, err := t.announce.Do(ctx, req).Wait(ctx)
	if err != nil {
		return nil, err
	}
	if resp.TrackerID != "" {
		t.mu.Lock()
		t.trackerID = resp.TrackerID
		t.mu.Unlock()
	}
	return resp, nil
}

// Scrape fetches aggregate stats for the given torrents.
func (t *HTTPTracker) Scrape(ctx context.Context, hashes []tracker.InfoHash) (*tracker.ScrapeResponse, error) {
	return t.scrape.Do(ctx, hashes).Wait(ctx)
}

// Close aborts any in-flight exchange and permanently disables the
// tracker. Idempotent.
func (t *HTTPTracker) Close() {
	t.announce.Close()
	t.scrape.Close()
}

func (t *HTTPTracker) IsClosed() bool {
	return t.announce.IsClosed() && t.scrape.IsClosed()
}

func (t *HTTPTracker) currentTrackerID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.trackerID
}
