package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// transientMarkers are substrings of error messages that indicate a retry
// may succeed: Salesforce and Notion throttling or lock codes, gateway
// failures and network faults.
var transientMarkers = []string{
	"request_limit_exceeded",
	"unable_to_lock_row",
	"server_unavailable",
	"rate_limited",
	"too many requests",
	"service unavailable",
	"bad gateway",
	"gateway timeout",
	"connection reset by peer",
	"broken pipe",
	"tls handshake timeout",
	"i/o timeout",
	"server closed idle connection",
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
