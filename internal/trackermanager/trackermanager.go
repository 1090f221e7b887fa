package trackermanager

import (
	"fmt"
	"net/url"
	"time"

	"github.com/avelis/trackwire/internal/config"
	"github.com/avelis/trackwire/internal/log"
	"github.com/avelis/trackwire/internal/tracker"
	"github.com/avelis/trackwire/internal/tracker/httptracker"
	"github.com/avelis/trackwire/internal/version"
)

// TrackerManager builds trackers from announce URLs with shared config.
type TrackerManager struct {
	cfg config.TrackerConfig
	log *log.Logger
}

func New(cfg config.TrackerConfig, logger *log.Logger) *TrackerManager {
	return &TrackerManager{
		cfg: cfg,
		log: logger,
	}
}

func (m *TrackerManager) Get(s string) (tracker.Tracker, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "http", "https":
		userAgent := m.cfg.UserAgent
		if userAgent == "" {
			userAgent = version.DefaultHTTPUserAgent
		}
		return httptracker.New(s, u, httptracker.SessionConfig{
			BaseTimeout:       time.Duration(m.cfg.RequestTimeout) * time.Second,
			MaxRetries:        m.cfg.MaxRetries,
			UserAgent:         userAgent,
			MaxResponseLength: m.cfg.MaxResponseLength,
			TLSSkipVerify:     m.cfg.TLSSkipVerify,
		}, m.log), nil
	case "udp", "udp4", "udp6":
		return nil, fmt.Errorf("UDP trackers are not supported: %s", s)
	default:
		return nil, fmt.Errorf("unsupported tracker scheme: %s", u.Scheme)
	}
}
