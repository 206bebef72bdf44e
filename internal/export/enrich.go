package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/slack-go/slack"
)

// attachmentMarker prefixes the rendered file list of a message.
const attachmentMarker = "📎 Attachments:"

// CollectUserIDs gathers every user identifier referenced as a sender or
// as an inline mention across the message set and its thread replies, in
// a single pass before resolution begins. The result is deduplicated and
// sorted so resolution order is deterministic.
func CollectUserIDs(messages []slack.Message, replies map[string][]slack.Message) []string {
	seen := make(map[string]bool)

	collect := func(m slack.Message) {
		if m.User != "" {
			seen[m.User] = true
		}
		for _, match := range reMention.FindAllStringSubmatch(m.Text, -1) {
			seen[match[1]] = true
		}
		for _, b := range m.Blocks.BlockSet {
			if rt, ok := b.(*slack.RichTextBlock); ok {
				collectBlockUsers(rt.Elements, seen)
			}
		}
	}

	for _, m := range messages {
		collect(m)
	}
	for _, thread := range replies {
		for _, m := range thread {
			collect(m)
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func collectBlockUsers(elems []slack.RichTextElement, seen map[string]bool) {
	for _, el := range elems {
		switch e := el.(type) {
		case *slack.RichTextSection:
			collectSectionUsers(e.Elements, seen)
		case *slack.RichTextQuote:
			collectSectionUsers(e.Elements, seen)
		case *slack.RichTextPreformatted:
			collectSectionUsers(e.Elements, seen)
		case *slack.RichTextList:
			collectBlockUsers(e.Elements, seen)
		}
	}
}

func collectSectionUsers(elems []slack.RichTextSectionElement, seen map[string]bool) {
	for _, el := range elems {
		if u, ok := el.(*slack.RichTextSectionUserElement); ok {
			seen[u.UserID] = true
		}
	}
}

// Enrich combines raw messages, pre-fetched thread replies and the
// resolved user map into the final ordered message list. Messages whose
// derived content is empty and whose replies are all empty are dropped;
// the filter runs after reply enrichment so a content-less parent with a
// live thread survives.
func Enrich(messages []slack.Message, replies map[string][]slack.Message, users map[string]string) []EnrichedMessage {
	out := make([]EnrichedMessage, 0, len(messages))

	for _, m := range messages {
		em := EnrichedMessage{
			Sender:    senderName(m, users),
			Content:   deriveContent(m, users),
			Timestamp: m.Timestamp,
		}

		for _, r := range replies[m.Timestamp] {
			reply := EnrichedMessage{
				Sender:    senderName(r, users),
				Content:   deriveContent(r, users),
				Timestamp: r.Timestamp,
			}
			if reply.Content != "" {
				em.Replies = append(em.Replies, reply)
			}
		}
		sort.SliceStable(em.Replies, func(i, j int) bool {
			return tsValue(em.Replies[i].Timestamp) < tsValue(em.Replies[j].Timestamp)
		})

		if em.Content == "" && len(em.Replies) == 0 {
			continue
		}
		out = append(out, em)
	}

	// The API serves pages newest-first; the document wants ascending.
	sort.SliceStable(out, func(i, j int) bool {
		return tsValue(out[i].Timestamp) < tsValue(out[j].Timestamp)
	})

	return out
}

// senderName derives the display name for a message. Messages with a
// sender identifier use the resolved map; bot messages use the bot's
// posted username; everything else is a system event.
func senderName(m slack.Message, users map[string]string) string {
	if m.User != "" {
		if name, ok := users[m.User]; ok && name != "" {
			return name
		}
		return "Unknown User"
	}

	switch Classify(m) {
	case KindBot:
		if m.Username != "" {
			return m.Username
		}
		return "Bot"
	case KindDeleted, KindSystem:
		return "System"
	}
	return "Unknown User"
}

// deriveContent builds the normalized content of a message. The parts are
// produced in a fixed order and joined by blank lines: primary text, file
// attachments, structured blocks, and finally subtype-specific synthetic
// text when nothing else produced content.
func deriveContent(m slack.Message, users map[string]string) string {
	var parts []string

	if strings.TrimSpace(m.Text) != "" {
		if t := NormalizeText(m.Text, users); t != "" {
			parts = append(parts, t)
		}
	}

	if len(m.Files) > 0 {
		parts = append(parts, renderFiles(m.Files))
	}

	if s := renderBlocks(m.Blocks.BlockSet, users); s != "" {
		parts = append(parts, s)
	}

	if len(parts) == 0 {
		if s := syntheticText(m); s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, "\n\n")
}

// renderFiles lists attachments as markdown links where a permalink
// exists, otherwise "name (mimetype)". Only links are preserved; file
// content is never transferred.
func renderFiles(files []slack.File) string {
	lines := []string{attachmentMarker}
	for _, f := range files {
		name := f.Name
		if name == "" {
			name = f.Title
		}
		if name == "" {
			name = "file"
		}
		switch {
		case f.Permalink != "":
			lines = append(lines, fmt.Sprintf("- [%s](%s)", name, f.Permalink))
		case f.Mimetype != "":
			lines = append(lines, fmt.Sprintf("- %s (%s)", name, f.Mimetype))
		default:
			lines = append(lines, "- "+name)
		}
	}
	return strings.Join(lines, "\n")
}

// syntheticText is the last-resort content for system events that carry
// no primary text of their own.
func syntheticText(m slack.Message) string {
	switch m.SubType {
	case "channel_join", "group_join":
		return "joined the channel"
	case "channel_leave", "group_leave":
		return "left the channel"
	case "channel_topic":
		return "Topic: " + m.Topic
	case "channel_purpose":
		return "Purpose: " + m.Purpose
	case "channel_name":
		return "Renamed the channel to #" + m.Name
	case "pinned_item":
		return "Pinned a message"
	case "message_deleted", "tombstone":
		return "[message deleted]"
	}
	return ""
}
