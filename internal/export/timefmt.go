package export

import (
	"strconv"
	"time"
)

// FormatTimestamp renders a platform timestamp (fixed-point seconds since
// epoch, e.g. "1753160757.123400") for display: a relative-day label plus
// a 12-hour clock time. Input that does not parse as a number is returned
// unchanged rather than treated as an error.
func FormatTimestamp(ts string, now time.Time) string {
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return ts
	}
	sec := int64(f)
	t := time.Unix(sec, 0).In(now.Location())
	return dayLabel(t, now) + " " + t.Format("3:04 PM")
}

// dayLabel picks the relative-day label: same calendar day "Today", the
// day before "Yesterday", within the prior six days the weekday name,
// otherwise short month and day, with the year only when it differs from
// the current one.
func dayLabel(t, now time.Time) string {
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	tDay := time.Date(ty, tm, td, 0, 0, 0, 0, t.Location())
	nDay := time.Date(ny, nm, nd, 0, 0, 0, 0, now.Location())

	days := int(nDay.Sub(tDay).Hours() / 24)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days >= 2 && days <= 6:
		return t.Format("Monday")
	}

	if t.Year() != now.Year() {
		return t.Format("Jan 2, 2006")
	}
	return t.Format("Jan 2")
}
