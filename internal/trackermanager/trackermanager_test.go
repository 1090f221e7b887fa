package trackermanager

import (
	"strings"
	"testing"

	"github.com/avelis/trackwire/internal/config"
	"github.com/avelis/trackwire/internal/log"
)

func testConfig() config.TrackerConfig {
	return config.TrackerConfig{
		RequestTimeout: 15,
		MaxRetries:     3,
		MinInterval:    60,
	}
}

func TestGet(t *testing.T) {
	m := New(testConfig(), log.Discard())

	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{name: "http", url: "http://tracker.example.com/announce"},
		{name: "https", url: "https://tracker.example.com/announce"},
		{name: "udp", url: "udp://tracker.example.com:6969", wantErr: "UDP trackers are not supported"},
		{name: "unknown scheme", url: "wss://tracker.example.com/announce", wantErr: "unsupported tracker scheme"},
		{name: "garbage", url: "://", wantErr: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trk, err := m.Get(tt.url)
			if tt.name == "garbage" {
				if err == nil {
					t.Error("expected a parse error")
				}
				return
			}
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("got %v, want error containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if trk.URL() != tt.url {
				t.Errorf("URL() = %q, want %q", trk.URL(), tt.url)
			}
			trk.Close()
		})
	}
}
