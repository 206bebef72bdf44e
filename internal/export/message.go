// Package export implements the conversation export pipeline: it turns
// raw Slack messages into enriched, identity-resolved records and renders
// them as a markdown document.
package export

import (
	"context"
	"strconv"

	"github.com/slack-go/slack"
)

// Kind classifies a raw message by its subtype so the enricher can match
// exhaustively instead of probing optional fields.
type Kind int

const (
	KindUser Kind = iota
	KindBot
	KindSystem
	KindDeleted
)

// Classify tags a raw message. Deleted tombstones win over everything,
// then bot messages, then messages with a sender, then system events.
func Classify(m slack.Message) Kind {
	switch {
	case m.SubType == "message_deleted" || m.SubType == "tombstone":
		return KindDeleted
	case m.SubType == "bot_message" || (m.User == "" && m.BotID != ""):
		return KindBot
	case m.User != "":
		return KindUser
	default:
		return KindSystem
	}
}

// EnrichedMessage is a fully resolved message record. Replies are one
// level deep: a reply never carries replies of its own.
type EnrichedMessage struct {
	Sender    string
	Content   string
	Timestamp string // platform-native fixed-point seconds, the sort key
	Replies   []EnrichedMessage
}

// Transcript is the result of an export run: the channel name and the
// ordered, content-bearing messages.
type Transcript struct {
	Channel  string
	Messages []EnrichedMessage
	Count    int
}

// SaveRequest carries a finished document to the download sink.
type SaveRequest struct {
	Filename  string
	Content   []byte
	Directory string // optional subdirectory under the sink root
}

// Sink persists export documents. Filename collisions are the sink's
// responsibility to resolve; it must never overwrite.
type Sink interface {
	Save(ctx context.Context, req SaveRequest) (path string, err error)
}

// tsValue compares platform timestamps as floating-point seconds.
// Unparseable timestamps compare as zero, which keeps DOM-scraped
// messages without timestamps in their original order under a stable
// sort.
func tsValue(ts string) float64 {
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return 0
	}
	return f
}
