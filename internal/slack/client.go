package slack

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// SlackAPI defines the Slack API methods used by the exporter
//
//go:generate go tool mockgen -source=$GOFILE -destination=client_mocks.go -package=slack
type SlackAPI interface {
	GetConversationInfoContext(ctx context.Context, input *slack.GetConversationInfoInput) (*slack.Channel, error)
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	GetConversationRepliesContext(ctx context.Context, params *slack.GetConversationRepliesParameters) ([]slack.Message, bool, string, error)
	GetUsersInConversationContext(ctx context.Context, params *slack.GetUsersInConversationParameters) ([]string, string, error)
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
}

// Config holds configuration for the Slack client
type Config struct {
	Token    string // Slack API token (required)
	Cookie   string // Slack cookie for xoxc token auth (optional)
	LogLevel string // "debug", "info", "warn", "error"
	Tuning   Tuning // retry and pacing knobs
}

// Tuning holds the retry and pacing knobs for API calls. The platform's
// rate limits are not contractually documented, so nothing here is
// hard-coded into the fetch loops.
type Tuning struct {
	MaxAttempts      int           // bounded retries after the first attempt
	BackoffBase      time.Duration // first retry delay, doubled per retry
	PageDelay        time.Duration // pacing between successful history pages
	PageLimit        int           // page size for history and reply pages
	UserBatchSize    int           // user lookups per batch
	UserRequestDelay time.Duration // pacing between lookups within a batch
	UserBatchDelay   time.Duration // pacing between lookup batches
}

// DefaultTuning returns the empirically tuned defaults.
func DefaultTuning() Tuning {
	return Tuning{
		MaxAttempts:      3,
		BackoffBase:      2 * time.Second,
		PageDelay:        time.Second,
		PageLimit:        100,
		UserBatchSize:    10,
		UserRequestDelay: 100 * time.Millisecond,
		UserBatchDelay:   500 * time.Millisecond,
	}
}

type Client struct {
	api    SlackAPI
	logger *zap.Logger
	tuning Tuning
	sleep  sleepFunc
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	opts := []slack.Option{}

	if cfg.Cookie != "" {
		logger.Info("Using cookie authentication for Slack client")
		httpClient := &http.Client{
			Transport: newCookieTransport(cfg.Cookie),
		}
		opts = append(opts, slack.OptionHTTPClient(httpClient))
	}

	tuning := cfg.Tuning
	if tuning.MaxAttempts == 0 {
		tuning = DefaultTuning()
	}

	api := slack.New(cfg.Token, opts...)

	c := &Client{
		api:    api,
		logger: logger,
		tuning: tuning,
		sleep:  sleepContext,
	}

	return c, nil
}

// newClientWithAPI creates a client with a given SlackAPI (for testing)
func newClientWithAPI(api SlackAPI, logger *zap.Logger, tuning Tuning) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tuning.MaxAttempts == 0 {
		tuning = DefaultTuning()
	}
	return &Client{
		api:    api,
		logger: logger,
		tuning: tuning,
		sleep:  sleepContext,
	}
}

// IsChannelID checks if a string looks like a Slack channel ID.
// Channel IDs are uppercase alphanumeric strings starting with C, D, or G
// and are typically 9-11 characters long
func IsChannelID(s string) bool {
	if len(s) < 9 {
		return false
	}

	// Must start with C, D, or G
	if s[0] != 'C' && s[0] != 'D' && s[0] != 'G' {
		return false
	}

	// Must be all uppercase alphanumeric
	for _, ch := range s {
		if !((ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')) {
			return false
		}
	}

	return true
}

// ChannelName returns a displayable name for the channel. Lookup failures
// degrade to the raw channel ID so the export header always has something
// to show.
func (c *Client) ChannelName(ctx context.Context, channelID string) string {
	var ch *slack.Channel
	err := c.withRetry(ctx, "conversations.info", func() error {
		var e error
		ch, e = c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
			ChannelID: channelID,
		})
		return e
	})
	if err != nil {
		c.logger.Warn("Channel info lookup failed, using channel ID",
			zap.String("channel_id", channelID),
			zap.Error(err))
		return channelID
	}
	if ch.NameNormalized != "" {
		return ch.NameNormalized
	}
	if ch.Name != "" {
		return ch.Name
	}
	return channelID
}

// slackOK converts an ok=false API envelope into an error so the retry
// helper treats it like any other failure.
func slackOK(ok bool, apiErr string) error {
	if ok {
		return nil
	}
	if apiErr == "" {
		apiErr = "unknown_error"
	}
	return fmt.Errorf("slack api error: %s", apiErr)
}
