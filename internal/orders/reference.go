package orders

import (
	"strconv"
	"strings"
	"time"
)

// NewReference builds a human-readable order reference from the millisecond
// timestamp, e.g. "KK-MFR0T9ZK".
func NewReference(prefix string, now time.Time) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "KK"
	}
	return prefix + "-" + strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
}
