package export

import (
	"regexp"
	"strings"
)

var (
	reMention   = regexp.MustCompile(`<@([A-Z0-9]+)(?:\|[^>]*)?>`)
	reChannel   = regexp.MustCompile(`<#[A-Z0-9]+\|([^>]*)>`)
	reChannelID = regexp.MustCompile(`<#([A-Z0-9]+)>`)
	reBroadcast = regexp.MustCompile(`<!(here|channel|everyone)(?:\|[^>]*)?>`)
	reLinkLabel = regexp.MustCompile(`<(https?://[^|>]+)\|([^>]+)>`)
	reLinkBare  = regexp.MustCompile(`<(https?://[^>]+)>`)
	reBold      = regexp.MustCompile(`\*([^*\n]+)\*`)
	reItalic    = regexp.MustCompile(`\b_([^_\n]+)_\b`)
	reStrike    = regexp.MustCompile(`~([^~\n]+)~`)

	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// entityReplacer decodes the HTML entities Slack uses to escape message
// text. Applied after angle-bracket token handling so decoded "<" and ">"
// cannot form fake tokens.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&amp;", "&",
)

// NormalizeText converts Slack message markup to markdown. Inline user
// mentions are replaced with "@" plus the resolved display name, or
// "@unknown" for identifiers missing from users. Pure function, no I/O.
func NormalizeText(s string, users map[string]string) string {
	if s == "" {
		return ""
	}

	s = reMention.ReplaceAllStringFunc(s, func(tok string) string {
		id := reMention.FindStringSubmatch(tok)[1]
		if name, ok := users[id]; ok && name != "" {
			return "@" + name
		}
		return "@unknown"
	})

	s = reChannel.ReplaceAllString(s, "#$1")
	s = reChannelID.ReplaceAllString(s, "#$1")
	s = reBroadcast.ReplaceAllString(s, "@$1")
	s = reLinkLabel.ReplaceAllString(s, "[$2]($1)")
	s = reLinkBare.ReplaceAllString(s, "$1")

	s = entityReplacer.Replace(s)

	// Slack mrkdwn to markdown: *bold* -> **bold**, _italic_ -> *italic*,
	// ~strike~ -> ~~strike~~. Code spans and fences already match.
	s = reBold.ReplaceAllString(s, "**$1**")
	s = reItalic.ReplaceAllString(s, "*$1*")
	s = reStrike.ReplaceAllString(s, "~~$1~~")

	// Slack bullet glyph to a markdown list marker.
	s = strings.ReplaceAll(s, "\n• ", "\n- ")
	s = strings.TrimPrefix(s, "• ")

	s = reMultiBlank.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
