package httptracker

import (
	"bytes"
	"net"
	"strconv"
	"time"

	"github.com/anacrolix/dht/v2/krpc"
	bencode "github.com/jackpal/bencode-go"

	"github.com/avelis/trackwire/internal/tracker"
)

func decodeAnnounce(body []byte) (*tracker.AnnounceResponse, error) {
	raw, err := bencode.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, tracker.ErrDecode
	}
	dict, ok := raw.(map[string]interface{})
	if !ok {
		return nil, tracker.ErrDecode
	}

	if err := failureReason(dict); err != nil {
		return nil, err
	}

	resp := &tracker.AnnounceResponse{
		Interval:    time.Duration(dictInt(dict, "interval")) * time.Second,
		MinInterval: time.Duration(dictInt(dict, "min interval")) * time.Second,
		Seeders:     int32(dictInt(dict, "complete")),
		Leechers:    int32(dictInt(dict, "incomplete")),
	}
	if s, ok := dict["warning message"].(string); ok {
		resp.WarningMessage = s
	}
	if s, ok := dict["tracker id"].(string); ok {
		resp.TrackerID = s
	}

	switch peers := dict["peers"].(type) {
	case nil:
	case string:
		// BEP 23 compact
		addrs, err := parsePeersCompact([]byte(peers))
		if err != nil {
			return nil, err
		}
		resp.Peers = addrs
	case []interface{}:
		// BEP 3 non-compact
		addrs, err := parsePeersDictionary(peers)
		if err != nil {
			return nil, err
		}
		resp.Peers = addrs
	default:
		return nil, tracker.ErrDecode
	}

	// BEP 7
	if peers6, ok := dict["peers6"].(string); ok {
		addrs, err := parsePeers6Compact([]byte(peers6))
		if err != nil {
			return nil, err
		}
		resp.Peers = append(resp.Peers, addrs...)
	}

	return resp, nil
}

func decodeScrape(body []byte) (*tracker.ScrapeResponse, error) {
	raw, err := bencode.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, tracker.ErrDecode
	}
	dict, ok := raw.(map[string]interface{})
	if !ok {
		return nil, tracker.ErrDecode
	}

	if err := failureReason(dict); err != nil {
		return nil, err
	}

	files, ok := dict["files"].(map[string]interface{})
	if !ok {
		return nil, tracker.ErrDecode
	}

	resp := &tracker.ScrapeResponse{
		Files: make(map[tracker.InfoHash]tracker.ScrapeStats, len(files)),
	}
	for key, v := range files {
		if len(key) != tracker.HashSize {
			return nil, tracker.ErrDecode
		}
		var h tracker.InfoHash
		copy(h[:], key)

		d, ok := v.(map[string]interface{})
		if !ok {
			return nil, tracker.ErrDecode
		}
		stats := tracker.ScrapeStats{
			Seeders:   int32(dictInt(d, "complete")),
			Downloads: int32(dictInt(d, "downloaded")),
			Leechers:  int32(dictInt(d, "incomplete")),
		}
		if name, ok := d["name"].(string); ok {
			stats.Name = name
		}
		resp.Files[h] = stats
	}

	return resp, nil
}

// failureReason converts a "failure reason" entry into a tracker.Error,
// carrying "retry in" when the tracker supplies one.
func failureReason(dict map[string]interface{}) error {
	reason, ok := dict["failure reason"].(string)
	if !ok || reason == "" {
		return nil
	}
	e := &tracker.Error{FailureReason: reason}
	switch retry := dict["retry in"].(type) {
	case string:
		if m, err := strconv.Atoi(retry); err == nil {
			e.RetryIn = time.Duration(m) * time.Minute
		}
	case int64:
		e.RetryIn = time.Duration(retry) * time.Minute
	}
	return e
}

func dictInt(d map[string]interface{}, key string) int64 {
	n, _ := d[key].(int64)
	return n
}

func parsePeersCompact(b []byte) ([]*net.TCPAddr, error) {
	var cnas krpc.CompactIPv4NodeAddrs
	if err := cnas.UnmarshalBinary(b); err != nil {
		return nil, tracker.ErrDecode
	}
	addrs := make([]*net.TCPAddr, 0, len(cnas))
	for _, na := range cnas {
		addrs = append(addrs, &net.TCPAddr{IP: na.IP, Port: na.Port})
	}
	return addrs, nil
}

func parsePeers6Compact(b []byte) ([]*net.TCPAddr, error) {
	var cnas krpc.CompactIPv6NodeAddrs
	if err := cnas.UnmarshalBinary(b); err != nil {
		return nil, tracker.ErrDecode
	}
	addrs := make([]*net.TCPAddr, 0, len(cnas))
	for _, na := range cnas {
		addrs = append(addrs, &net.TCPAddr{IP: na.IP, Port: na.Port})
	}
	return addrs, nil
}

func parsePeersDictionary(list []interface{}) ([]*net.TCPAddr, error) {
	addrs := make([]*net.TCPAddr, 0, len(list))
	for _, item := range list {
		d, ok := item.(map[string]interface{})
		if !ok {
			return nil, tracker.ErrDecode
		}
		ipStr, ok := d["ip"].(string)
		if !ok {
			return nil, tracker.ErrDecode
		}
		port, ok := d["port"].(int64)
		if !ok {
			return nil, tracker.ErrDecode
		}
		ip := net.ParseIP(ipStr)
		if ip == nil {
			return nil, tracker.ErrDecode
		}
		addrs = append(addrs, &net.TCPAddr{IP: ip, Port: int(port)})
	}
	return addrs, nil
}
