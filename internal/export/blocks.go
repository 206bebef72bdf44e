package export

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

// renderBlocks renders a message's structured content blocks to markdown.
// Only block shapes that carry conversation text are handled; layout-only
// blocks are skipped. Returns "" when nothing renderable is present.
func renderBlocks(blocks []slack.Block, users map[string]string) string {
	var parts []string
	for _, b := range blocks {
		switch blk := b.(type) {
		case *slack.RichTextBlock:
			if s := renderRichText(blk.Elements, users); s != "" {
				parts = append(parts, s)
			}
		case *slack.SectionBlock:
			if blk.Text != nil && blk.Text.Text != "" {
				parts = append(parts, NormalizeText(blk.Text.Text, users))
			}
			for _, f := range blk.Fields {
				if f != nil && f.Text != "" {
					parts = append(parts, NormalizeText(f.Text, users))
				}
			}
		case *slack.DividerBlock:
			parts = append(parts, "---")
		}
	}
	return strings.Join(parts, "\n\n")
}

func renderRichText(elems []slack.RichTextElement, users map[string]string) string {
	var parts []string
	for _, el := range elems {
		switch e := el.(type) {
		case *slack.RichTextSection:
			if s := renderSectionElements(e.Elements, users); s != "" {
				parts = append(parts, s)
			}
		case *slack.RichTextList:
			if s := renderList(e, users); s != "" {
				parts = append(parts, s)
			}
		case *slack.RichTextQuote:
			if s := renderSectionElements(e.Elements, users); s != "" {
				parts = append(parts, quotePrefix(s))
			}
		case *slack.RichTextPreformatted:
			if s := renderSectionElements(e.Elements, users); s != "" {
				parts = append(parts, "```\n"+s+"\n```")
			}
		}
	}
	return strings.Join(parts, "\n")
}

// renderList joins nested list items with a bullet or numbered prefix.
// Each list element is itself a rich text element, usually a section.
func renderList(l *slack.RichTextList, users map[string]string) string {
	ordered := string(l.Style) == "ordered"
	var lines []string
	for i, item := range l.Elements {
		text := renderRichText([]slack.RichTextElement{item}, users)
		if text == "" {
			continue
		}
		if ordered {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, text))
		} else {
			lines = append(lines, "- "+text)
		}
	}
	return strings.Join(lines, "\n")
}

func renderSectionElements(elems []slack.RichTextSectionElement, users map[string]string) string {
	var b strings.Builder
	for _, el := range elems {
		switch e := el.(type) {
		case *slack.RichTextSectionTextElement:
			b.WriteString(styledText(e.Text, e.Style))
		case *slack.RichTextSectionUserElement:
			if name, ok := users[e.UserID]; ok && name != "" {
				b.WriteString("@" + name)
			} else {
				b.WriteString("@unknown")
			}
		case *slack.RichTextSectionLinkElement:
			if e.Text != "" && e.Text != e.URL {
				fmt.Fprintf(&b, "[%s](%s)", e.Text, e.URL)
			} else {
				b.WriteString(e.URL)
			}
		case *slack.RichTextSectionChannelElement:
			b.WriteString("#" + e.ChannelID)
		case *slack.RichTextSectionEmojiElement:
			b.WriteString(":" + e.Name + ":")
		case *slack.RichTextSectionBroadcastElement:
			b.WriteString("@" + e.Range)
		}
	}
	return strings.TrimSpace(b.String())
}

func styledText(text string, style *slack.RichTextSectionTextStyle) string {
	if style == nil || text == "" {
		return text
	}
	if style.Code {
		return "`" + text + "`"
	}
	if style.Bold {
		text = "**" + text + "**"
	}
	if style.Italic {
		text = "*" + text + "*"
	}
	if style.Strike {
		text = "~~" + text + "~~"
	}
	return text
}

// quotePrefix prepends the markdown quote marker to every line.
func quotePrefix(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}
