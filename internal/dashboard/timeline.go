package dashboard

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Ago renders the distance from t to now the way the timeline shows it,
// e.g. "just now", "5 minutes ago", "3 days ago". Times in the future
// (clock skew with the API) read as "just now".
func Ago(t, now time.Time) string {
	if now.Sub(t) < time.Minute {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
