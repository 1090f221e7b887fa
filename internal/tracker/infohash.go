package tracker

import (
	"encoding/hex"
	"fmt"
)

const HashSize = 20

// InfoHash is the 20-byte SHA1 hash identifying a torrent.
type InfoHash [HashSize]byte

func (h InfoHash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseInfoHash decodes a 40-character hex string.
func ParseInfoHash(s string) (InfoHash, error) {
	var h InfoHash
	if len(s) != 2*HashSize {
		return h, fmt.Errorf("info hash hex string has bad length: %d", len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return InfoHash{}, err
	}
	return h, nil
}
