package dom

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/matillion/slack-md-export/internal/export"
)

// ErrNoMessages is returned when the rendered page yields no scrapeable
// message elements, so the orchestrator can report the fallback failure
// alongside the API error.
var ErrNoMessages = errors.New("no message elements found in page")

const (
	defaultMaxScrolls = 30
	defaultStillLimit = 3
)

// Extractor scrapes the rendered conversation pane into a transcript.
type Extractor struct {
	session    PageSession
	logger     *zap.Logger
	maxScrolls int // hard bound on scroll attempts
	stillLimit int // consecutive no-new-content scrolls before stopping
}

func NewExtractor(session PageSession, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		session:    session,
		logger:     logger,
		maxScrolls: defaultMaxScrolls,
		stillLimit: defaultStillLimit,
	}
}

// Extract implements export.Fallback: scroll until no more history
// loads, then scrape every rendered message element.
func (e *Extractor) Extract(ctx context.Context) (*export.Transcript, error) {
	doc, err := e.scrollForHistory(ctx)
	if err != nil {
		return nil, err
	}

	messages := e.extractMessages(doc)
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	// Stable so messages without a scrapeable timestamp keep their
	// on-page order.
	sort.SliceStable(messages, func(i, j int) bool {
		return tsLess(messages[i].Timestamp, messages[j].Timestamp)
	})

	return &export.Transcript{
		Channel:  e.session.ChannelName(ctx),
		Messages: messages,
		Count:    len(messages),
	}, nil
}

// scrollForHistory repeatedly scrolls the pane to trigger lazy loading,
// bounded by maxScrolls and stopping early once stillLimit consecutive
// scrolls produce no new message elements.
func (e *Extractor) scrollForHistory(ctx context.Context) (*html.Node, error) {
	raw, err := e.session.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}

	count := e.countMessages(doc)
	still := 0

	for i := 0; i < e.maxScrolls && still < e.stillLimit; i++ {
		if err := e.session.ScrollTop(ctx); err != nil {
			e.logger.Warn("Scroll failed, extracting what is rendered", zap.Error(err))
			break
		}

		raw, err = e.session.HTML(ctx)
		if err != nil {
			return nil, err
		}
		next, err := html.Parse(strings.NewReader(raw))
		if err != nil {
			return nil, err
		}
		doc = next

		if n := e.countMessages(doc); n > count {
			count = n
			still = 0
		} else {
			still++
		}
	}

	e.logger.Debug("Scroll pass finished", zap.Int("rendered_messages", count))
	return doc, nil
}

func (e *Extractor) countMessages(doc *html.Node) int {
	nodes, _ := firstProbe(doc, messageProbes)
	return len(nodes)
}

func (e *Extractor) extractMessages(doc *html.Node) []export.EnrichedMessage {
	containers, probeName := firstProbe(doc, messageProbes)
	if len(containers) == 0 {
		return nil
	}
	e.logger.Debug("Message containers found",
		zap.String("probe", probeName),
		zap.Int("count", len(containers)))

	var out []export.EnrichedMessage
	for _, c := range containers {
		m := e.extractOne(c, true)
		if m.Content == "" && len(m.Replies) == 0 {
			continue
		}
		out = append(out, m)
	}
	return out
}

// extractOne scrapes a single message element. withReplies recurses
// exactly one level into nested thread-reply elements.
func (e *Extractor) extractOne(container *html.Node, withReplies bool) export.EnrichedMessage {
	// Reply subtrees are removed from the parent's field extraction by
	// probing them first and comparing node identity.
	var replyNodes []*html.Node
	if withReplies {
		replyNodes, _ = firstProbe(container, replyProbes)
	}
	inReply := func(n *html.Node) bool {
		for p := n; p != nil; p = p.Parent {
			for _, r := range replyNodes {
				if p == r {
					return true
				}
			}
		}
		return false
	}

	m := export.EnrichedMessage{
		Sender:    "Unknown User",
		Timestamp: e.timestamp(container),
	}

	if nodes, _ := firstProbe(container, senderProbes); len(nodes) > 0 {
		for _, n := range nodes {
			if !inReply(n) {
				if s := nodeText(n); s != "" {
					m.Sender = s
				}
				break
			}
		}
	}

	if nodes, _ := firstProbe(container, contentProbes); len(nodes) > 0 {
		for _, n := range nodes {
			if !inReply(n) {
				m.Content = nodeText(n)
				break
			}
		}
	}

	if withReplies {
		for _, r := range replyNodes {
			reply := e.extractOne(r, false)
			if reply.Content != "" {
				m.Replies = append(m.Replies, reply)
			}
		}
	}

	return m
}

// timestamp scans the element for a raw fixed-point timestamp attribute.
func (e *Extractor) timestamp(container *html.Node) string {
	for _, key := range timestampAttrs {
		nodes := findAll(container, func(n *html.Node) bool {
			return n.Type == html.ElementNode && attrValue(n, key) != ""
		})
		if len(nodes) > 0 {
			return attrValue(nodes[0], key)
		}
	}
	return ""
}

// tsLess compares fixed-point timestamps as floats; when either side
// does not parse the pair is left in its existing order.
func tsLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA != nil || errB != nil {
		return false
	}
	return fa < fb
}
