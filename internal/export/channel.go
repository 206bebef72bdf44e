package export

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrNoChannel is returned when no channel identifier can be determined
// from the page location. Fatal for the API path; the DOM fallback does
// not need an identifier.
var ErrNoChannel = errors.New("no channel identifier in page location")

// channelPatterns are tried in order; the first match wins.
var channelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/archives/([CDG][A-Z0-9]{8,})`),
	regexp.MustCompile(`/client/T[A-Z0-9]+/([CDG][A-Z0-9]{8,})`),
	regexp.MustCompile(`[?&]channel=([CDG][A-Z0-9]{8,})`),
}

// DetermineChannelID parses a conversation identifier out of the current
// page location.
func DetermineChannelID(pageURL string) (string, error) {
	for _, p := range channelPatterns {
		if m := p.FindStringSubmatch(pageURL); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNoChannel, pageURL)
}
