package tracker

import (
	"bytes"
	"testing"
)

func TestNewPeerIDPrefix(t *testing.T) {
	id := NewPeerID("-XX1234-")
	if !bytes.HasPrefix(id[:], []byte("-XX1234-")) {
		t.Errorf("peer id %q does not start with the given prefix", id)
	}

	id = NewPeerID("")
	if !bytes.HasPrefix(id[:], []byte(DefaultPeerIDPrefix)) {
		t.Errorf("peer id %q does not start with the default prefix", id)
	}
}

func TestNewPeerIDUnique(t *testing.T) {
	seen := make(map[PeerID]bool)
	for i := 0; i < 100; i++ {
		id := NewPeerID("")
		if seen[id] {
			t.Fatalf("duplicate peer id generated: %q", id)
		}
		seen[id] = true
	}
}
