package version

import (
	"fmt"
)

const Version = "0.1.0"

var (
	DefaultHTTPUserAgent string
)

func init() {
	const (
		namespace   = "avelis"
		packageName = "trackwire"
	)

	// https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/User-Agent#library_and_net_tool_ua_strings
	DefaultHTTPUserAgent = fmt.Sprintf(
		"%v-%v/%v",
		namespace,
		packageName,
		Version,
	)
}
