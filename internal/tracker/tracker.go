// Announce types after github.com/cenkalti/rain
package tracker

import (
	"context"
	"errors"
	"net"
	"time"
)

type Tracker interface {
	Announce(ctx context.Context, req AnnounceRequest) (*AnnounceResponse, error)
	URL() string
	Close()
}

// Scraper is implemented by trackers that support BEP 48 scrape.
type Scraper interface {
	Scrape(ctx context.Context, hashes []InfoHash) (*ScrapeResponse, error)
}

type AnnounceRequest struct {
	Torrent Torrent
	Event   Event
	NumWant int
}

type AnnounceResponse struct {
	Interval       time.Duration
	MinInterval    time.Duration
	Leechers       int32
	Seeders        int32
	WarningMessage string
	TrackerID      string
	Peers          []*net.TCPAddr
}

type ScrapeResponse struct {
	Files map[InfoHash]ScrapeStats
}

type ScrapeStats struct {
	Seeders   int32
	Downloads int32
	Leechers  int32
	Name      string
}

var ErrDecode = errors.New("cannot decode response")

// Error carries the failure reason sent by the tracker itself.
type Error struct {
	FailureReason string
	RetryIn       time.Duration
}

func (e *Error) Error() string {
	return e.FailureReason
}
