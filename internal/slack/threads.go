package slack

import (
	"context"
	"strconv"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// FetchReplies retrieves the replies of the thread rooted at threadTS,
// including the root message itself; callers filter the root out by
// timestamp equality. Threads are best-effort enrichment: any failure is
// swallowed and an empty slice returned, never an error.
func (c *Client) FetchReplies(ctx context.Context, channelID, threadTS string, oldest time.Time) []slack.Message {
	var all []slack.Message
	cursor := ""
	oldestArg := strconv.FormatInt(oldest.Unix(), 10)

	for {
		var msgs []slack.Message
		var hasMore bool
		var next string
		err := c.withRetry(ctx, "conversations.replies", func() error {
			var e error
			msgs, hasMore, next, e = c.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
				ChannelID: channelID,
				Timestamp: threadTS,
				Cursor:    cursor,
				Oldest:    oldestArg,
				Limit:     c.tuning.PageLimit,
				Inclusive: true,
			})
			return e
		})
		if err != nil {
			c.logger.Warn("Thread fetch failed, exporting parent without replies",
				zap.String("channel_id", channelID),
				zap.String("thread_ts", threadTS),
				zap.Error(err))
			return nil
		}

		all = append(all, msgs...)

		if !hasMore || next == "" {
			break
		}
		cursor = next
	}

	return all
}
