package httptracker

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/avelis/trackwire/internal/tracker"
	"github.com/avelis/trackwire/pkg/urlutil"
)

// ScrapeURL derives the scrape URL from an announce URL per BEP 48: the
// last path segment must begin with "announce", which becomes "scrape".
func ScrapeURL(announce *url.URL) (*url.URL, error) {
	path := announce.Path
	i := strings.LastIndex(path, "/")
	if i == -1 || !strings.HasPrefix(path[i+1:], "announce") {
		return nil, fmt.Errorf("tracker does not support scrape: %q", path)
	}
	u := urlutil.CopyURL(announce)
	u.Path = path[:i+1] + "scrape" + strings.TrimPrefix(path[i+1:], "announce")
	return u, nil
}

// scrapeParams emits one info_hash pair per requested torrent, in the
// given order. An empty request is rejected by the composer.
func scrapeParams(hashes []tracker.InfoHash) (*Params, error) {
	p := NewParams()
	for _, h := range hashes {
		p.Add("info_hash", percentEscape(h))
	}
	return p, nil
}
