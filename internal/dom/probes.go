package dom

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// probe is one capability check in an ordered cascade: the first probe
// whose matcher yields any nodes wins. The page's structure varies
// between client versions, so none of these selectors is load-bearing on
// its own.
type probe struct {
	name  string
	match func(n *html.Node) bool
}

// messageProbes locate message container elements, most specific first.
var messageProbes = []probe{
	{name: "data-qa message container", match: attrEquals("data-qa", "message_container")},
	{name: "message kit background", match: classContains("c-message_kit__background")},
	{name: "virtual list item", match: classContains("c-virtual_list__item")},
	{name: "role listitem", match: attrEquals("role", "listitem")},
}

// senderProbes locate the sender name inside a container.
var senderProbes = []probe{
	{name: "data-qa message sender", match: attrEquals("data-qa", "message_sender")},
	{name: "message sender class", match: classContains("c-message__sender")},
	{name: "message kit sender", match: classContains("c-message_kit__sender")},
}

// contentProbes locate the message body inside a container.
var contentProbes = []probe{
	{name: "data-qa message text", match: attrEquals("data-qa", "message-text")},
	{name: "message kit text", match: classContains("c-message_kit__text")},
	{name: "rich text section", match: classContains("p-rich_text_section")},
}

// replyProbes locate nested thread-reply elements; extraction recurses
// exactly one level into these.
var replyProbes = []probe{
	{name: "data-qa thread reply", match: attrEquals("data-qa", "thread_reply")},
	{name: "message reply class", match: classContains("c-message__reply")},
}

// timestampAttrs are checked in order on any descendant for the raw
// fixed-point timestamp.
var timestampAttrs = []string{"data-ts", "data-timestamp"}

func attrEquals(key, val string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && attrValue(n, key) == val
	}
}

func classContains(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, c := range strings.Fields(attrValue(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// findAll collects nodes matching match. Matched nodes are not descended
// into, so nested matches inside a hit are left to the per-element pass.
func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// firstProbe runs the cascade and returns the matches of the first probe
// that yields any, along with its name for logging.
func firstProbe(root *html.Node, probes []probe) ([]*html.Node, string) {
	for _, p := range probes {
		if nodes := findAll(root, p.match); len(nodes) > 0 {
			return nodes, p.name
		}
	}
	return nil, ""
}

var (
	reMultiSpace = regexp.MustCompile(`[^\S\n]{2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// nodeText flattens an element to plain text: <br> becomes a newline,
// block-level elements break lines, everything else concatenates.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "br", "p", "div", "li", "blockquote", "pre":
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "li", "blockquote", "pre":
				b.WriteString("\n")
			}
		}
	}
	walk(n)
	return collapseWhitespace(b.String())
}

// collapseWhitespace tidies scraped text: runs of spaces become one,
// each line is trimmed, and three or more consecutive newlines collapse
// to a blank line.
func collapseWhitespace(s string) string {
	s = reMultiSpace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")

	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
