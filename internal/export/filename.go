package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var reUnsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ExpandFileName renders the filename template at the export wall-clock
// time. Tokens YYYY, MM, DD, HH and mm expand to zero-padded date and
// time components, {channel} to the sanitized channel name; literal
// characters pass through unchanged. A ".md" extension is appended when
// the template doesn't end in one.
func ExpandFileName(format, channel string, now time.Time) string {
	name := strings.NewReplacer(
		"{channel}", SanitizeChannelName(channel),
		"YYYY", fmt.Sprintf("%04d", now.Year()),
		"MM", fmt.Sprintf("%02d", int(now.Month())),
		"DD", fmt.Sprintf("%02d", now.Day()),
		"HH", fmt.Sprintf("%02d", now.Hour()),
		"mm", fmt.Sprintf("%02d", now.Minute()),
	).Replace(format)

	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	return name
}

// SanitizeChannelName strips characters that are unsafe in filenames,
// collapsing runs into a single dash.
func SanitizeChannelName(channel string) string {
	channel = strings.TrimPrefix(channel, "#")
	channel = reUnsafeFileChars.ReplaceAllString(channel, "-")
	channel = strings.Trim(channel, "-")
	if channel == "" {
		return "channel"
	}
	return channel
}
