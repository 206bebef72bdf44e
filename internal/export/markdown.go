package export

import (
	"strings"
	"time"
)

// SerializeOptions control the rendered document shape.
type SerializeOptions struct {
	IncludeTimestamps    bool
	IncludeThreadReplies bool
	Now                  time.Time // export wall-clock time, the only nondeterminism
}

// Serialize renders the transcript as a markdown document. Given a fixed
// transcript and Now, the output is byte-identical across runs.
func Serialize(t Transcript, opts SerializeOptions) string {
	var b strings.Builder

	b.WriteString("# #" + t.Channel + "\n\n")
	b.WriteString("Exported " + opts.Now.Format("Jan 2, 2006 3:04 PM") + "\n\n")
	b.WriteString("---\n\n")

	for _, m := range t.Messages {
		b.WriteString("**" + m.Sender + "**")
		// DOM-scraped messages may carry no timestamp at all.
		if opts.IncludeTimestamps && m.Timestamp != "" {
			b.WriteString(" (" + FormatTimestamp(m.Timestamp, opts.Now) + ")")
		}
		b.WriteString(":\n")
		if m.Content != "" {
			b.WriteString(m.Content + "\n")
		}
		b.WriteString("\n")

		if opts.IncludeThreadReplies && len(m.Replies) > 0 {
			b.WriteString("Thread Replies:\n")
			for _, r := range m.Replies {
				b.WriteString("- **" + r.Sender + "**: " + flatten(r.Content) + "\n")
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// flatten collapses multi-line reply content onto a single bulleted line.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
