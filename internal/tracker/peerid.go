package tracker

import "github.com/google/uuid"

// PeerID is the 20-byte identifier sent to trackers and peers.
type PeerID [20]byte

// DefaultPeerIDPrefix follows the Azureus-style convention from BEP 20.
const DefaultPeerIDPrefix = "-TW0010-"

// NewPeerID generates a peer id with the given prefix and a random
// tail. The tail comes from a fresh UUID so concurrent sessions never
// collide.
func NewPeerID(prefix string) PeerID {
	if prefix == "" {
		prefix = DefaultPeerIDPrefix
	}
	var id PeerID
	n := copy(id[:], prefix)
	u := uuid.New()
	copy(id[n:], u[:])
	return id
}
