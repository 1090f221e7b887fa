package httptracker

import (
	"encoding/hex"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/avelis/trackwire/internal/tracker"
)

// announceParams builds the BEP 3 query parameters. Binary values are
// percent-escaped here; the composer appends them verbatim.
func (t *HTTPTracker) announceParams(req tracker.AnnounceRequest) (*Params, error) {
	p := NewParams()

	p.Add("info_hash", percentEscape(req.Torrent.InfoHash))
	p.Add("peer_id", percentEscape(req.Torrent.PeerID))
	p.Add("port", strconv.Itoa(req.Torrent.Port))
	p.Add("uploaded", strconv.FormatInt(req.Torrent.BytesUploaded, 10))
	p.Add("downloaded", strconv.FormatInt(req.Torrent.BytesDownloaded, 10))

	left := req.Torrent.BytesLeft
	if left < 0 {
		left = math.MaxInt64
	}
	p.Add("left", strconv.FormatInt(left, 10))

	p.Add("compact", "1")
	p.Add("no_peer_id", "1")
	p.Add("numwant", strconv.Itoa(req.NumWant))

	if req.Event != tracker.EventNone {
		p.Add("event", req.Event.String())
	}

	if id := t.currentTrackerID(); id != "" {
		p.Add("trackerid", url.QueryEscape(id))
	}

	p.Add("key", hex.EncodeToString(req.Torrent.PeerID[16:20]))

	return p, nil
}

func percentEscape(b [20]byte) string {
	var sb strings.Builder
	sb.Grow(60)
	s := hex.EncodeToString(b[:])
	for i := 0; i < 20; i++ {
		sb.WriteByte('%')
		sb.WriteByte(s[i*2])
		sb.WriteByte(s[i*2+1])
	}
	return sb.String()
}
