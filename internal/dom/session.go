// Package dom implements the fallback extraction path: scraping the
// currently rendered conversation pane when the structured API path is
// unavailable. It is lower fidelity than the API path and shares only
// the serialization stage with it.
package dom

import "context"

// PageSession is the extractor's window onto the rendered page. The
// surrounding extension supplies a live implementation; StaticSession
// covers snapshots and tests.
type PageSession interface {
	// HTML returns the current document markup.
	HTML(ctx context.Context) (string, error)
	// ScrollTop scrolls the conversation pane up to trigger lazy
	// loading of older messages.
	ScrollTop(ctx context.Context) error
	// ChannelName returns a displayable conversation name. The DOM
	// path never needs a channel identifier.
	ChannelName(ctx context.Context) string
}

// StaticSession serves a fixed document. Scrolling is a no-op.
type StaticSession struct {
	Name     string
	Document string
}

func (s *StaticSession) HTML(ctx context.Context) (string, error) {
	return s.Document, nil
}

func (s *StaticSession) ScrollTop(ctx context.Context) error {
	return nil
}

func (s *StaticSession) ChannelName(ctx context.Context) string {
	return s.Name
}
