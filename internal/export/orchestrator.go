package export

import (
	"context"
	"errors"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/matillion/slack-md-export/internal/config"
)

// State names the orchestrator's position in the export pipeline. States
// advance sequentially and are never re-entered.
type State int

const (
	StateIdle State = iota
	StateDeterminingChannel
	StateFetchingHistory
	StateResolvingIdentities
	StateEnrichingMessages
	StateSerializing
	StateDownloading
	StateDone
	StateAPIFailed
	StateScrollingForHistory
	StateExtractingDom
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:                "idle",
	StateDeterminingChannel:  "determining_channel",
	StateFetchingHistory:     "fetching_history",
	StateResolvingIdentities: "resolving_identities",
	StateEnrichingMessages:   "enriching_messages",
	StateSerializing:         "serializing",
	StateDownloading:         "downloading",
	StateDone:                "done",
	StateAPIFailed:           "api_failed",
	StateScrollingForHistory: "scrolling_for_history",
	StateExtractingDom:       "extracting_dom",
	StateFailed:              "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ErrNoSource is the API-path error for a run with no history source,
// typically because credentials were missing at startup. Like any other
// API-path failure it routes to the DOM fallback when one is available.
var ErrNoSource = errors.New("no history source available")

// HistorySource is the API-path dependency of the orchestrator,
// implemented by the Slack client.
type HistorySource interface {
	FetchHistory(ctx context.Context, channelID string, oldest time.Time) ([]slack.Message, error)
	FetchReplies(ctx context.Context, channelID, threadTS string, oldest time.Time) []slack.Message
	ResolveUsers(ctx context.Context, channelID string, ids []string) (map[string]string, error)
	ChannelName(ctx context.Context, channelID string) string
}

// Fallback is the lower-fidelity extraction path used when the API path
// fails. It does not need a channel identifier, only whatever is visible
// on the page.
type Fallback interface {
	Extract(ctx context.Context) (*Transcript, error)
}

// Result summarizes a finished export.
type Result struct {
	Path         string
	Channel      string
	MessageCount int
	UsedFallback bool
}

// Orchestrator drives the pipeline: channel determination, history fetch,
// identity resolution, enrichment, serialization and download, with the
// DOM fallback as a structurally separate second path. All entities are
// created fresh per Run and discarded afterwards.
type Orchestrator struct {
	source   HistorySource
	fallback Fallback // may be nil when no page session is available
	sink     Sink
	cfg      *config.Config
	logger   *zap.Logger
	now      func() time.Time
	state    State
}

func NewOrchestrator(source HistorySource, fallback Fallback, sink Sink, cfg *config.Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		source:   source,
		fallback: fallback,
		sink:     sink,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		state:    StateIdle,
	}
}

// State reports the orchestrator's current pipeline state.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) transition(next State) {
	o.logger.Debug("Pipeline state change",
		zap.Stringer("from", o.state),
		zap.Stringer("to", next))
	o.state = next
}

// Run executes one export. The API path is attempted first; any fatal
// error there switches to the DOM fallback. The document is handed to
// the sink only after the entire pipeline completes, so no partial file
// is ever written. When both paths fail, both errors are surfaced.
func (o *Orchestrator) Run(ctx context.Context, pageURL string) (*Result, error) {
	o.transition(StateDeterminingChannel)

	transcript, apiErr := o.runAPIPath(ctx, pageURL)
	usedFallback := false

	if apiErr != nil {
		o.transition(StateAPIFailed)
		if o.fallback == nil {
			o.transition(StateFailed)
			return nil, apiErr
		}
		o.logger.Warn("API path failed, falling back to DOM extraction", zap.Error(apiErr))

		// Extract performs both fallback phases; the scroll state is
		// announced first so the sequence is visible in the state log.
		o.transition(StateScrollingForHistory)
		o.transition(StateExtractingDom)
		var domErr error
		transcript, domErr = o.fallback.Extract(ctx)
		if domErr != nil {
			o.transition(StateFailed)
			return nil, errors.Join(apiErr, domErr)
		}
		usedFallback = true
	}

	o.transition(StateSerializing)
	now := o.now()
	doc := Serialize(*transcript, SerializeOptions{
		IncludeTimestamps:    o.cfg.IncludeTimestamps,
		IncludeThreadReplies: o.cfg.IncludeThreadReplies,
		Now:                  now,
	})

	o.transition(StateDownloading)
	filename := ExpandFileName(o.cfg.FileNameFormat, transcript.Channel, now)
	path, err := o.sink.Save(ctx, SaveRequest{
		Filename:  filename,
		Content:   []byte(doc),
		Directory: o.cfg.DownloadDirectory,
	})
	if err != nil {
		o.transition(StateFailed)
		return nil, err
	}

	o.transition(StateDone)
	o.logger.Info("Export complete",
		zap.String("channel", transcript.Channel),
		zap.Int("messages", transcript.Count),
		zap.Bool("used_fallback", usedFallback),
		zap.String("path", path))

	return &Result{
		Path:         path,
		Channel:      transcript.Channel,
		MessageCount: transcript.Count,
		UsedFallback: usedFallback,
	}, nil
}

// runAPIPath builds the transcript through the structured API: history
// pages, then thread replies interleaved with the identifier collection
// pass, then a single identity resolution, then enrichment.
func (o *Orchestrator) runAPIPath(ctx context.Context, pageURL string) (*Transcript, error) {
	if o.source == nil {
		return nil, ErrNoSource
	}

	channelID, err := DetermineChannelID(pageURL)
	if err != nil {
		return nil, err
	}

	o.transition(StateFetchingHistory)
	oldest := o.cfg.Oldest(o.now())
	messages, err := o.source.FetchHistory(ctx, channelID, oldest)
	if err != nil {
		return nil, err
	}

	// Replies are fetched iteratively, never concurrently, so the
	// rate-limit state stays predictable. Only messages that report
	// replies are fetched, and only when the config asks for threads.
	replies := make(map[string][]slack.Message)
	if o.cfg.IncludeThreadReplies {
		for _, m := range messages {
			if m.ReplyCount == 0 {
				continue
			}
			thread := o.source.FetchReplies(ctx, channelID, m.Timestamp, oldest)
			var withoutRoot []slack.Message
			for _, r := range thread {
				if r.Timestamp != m.Timestamp {
					withoutRoot = append(withoutRoot, r)
				}
			}
			replies[m.Timestamp] = withoutRoot
		}
	}

	o.transition(StateResolvingIdentities)
	ids := CollectUserIDs(messages, replies)
	users, err := o.source.ResolveUsers(ctx, channelID, ids)
	if err != nil {
		return nil, err
	}

	o.transition(StateEnrichingMessages)
	enriched := Enrich(messages, replies, users)

	return &Transcript{
		Channel:  o.source.ChannelName(ctx, channelID),
		Messages: enriched,
		Count:    len(enriched),
	}, nil
}
