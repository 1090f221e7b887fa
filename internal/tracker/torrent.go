package tracker

// Transfer stats sent in every announce request.
type Torrent struct {
	BytesUploaded   int64
	BytesDownloaded int64
	BytesLeft       int64
	InfoHash        InfoHash
	PeerID          PeerID
	Port            int
}
