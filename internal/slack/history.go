package slack

import (
	"context"
	"strconv"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// FetchHistory retrieves every message in the channel no older than oldest,
// walking cursor pages strictly sequentially. Pages are paced by
// Tuning.PageDelay (never before the first page) to stay under the rate
// limit. Each page gets the full bounded-retry budget; exhausting it is
// fatal for the whole fetch.
func (c *Client) FetchHistory(ctx context.Context, channelID string, oldest time.Time) ([]slack.Message, error) {
	// Bucket starts full, so the first page goes out immediately and
	// each subsequent page waits out the pacing interval. The delay is
	// slept through the injectable sleep so tests can observe it.
	limiter := rate.NewLimiter(rate.Every(c.tuning.PageDelay), 1)

	var all []slack.Message
	cursor := ""
	oldestArg := strconv.FormatInt(oldest.Unix(), 10)

	for {
		if d := limiter.Reserve().Delay(); d > 0 {
			if err := c.sleep(ctx, d); err != nil {
				return nil, err
			}
		}

		var resp *slack.GetConversationHistoryResponse
		err := c.withRetry(ctx, "conversations.history", func() error {
			var e error
			resp, e = c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
				ChannelID: channelID,
				Cursor:    cursor,
				Oldest:    oldestArg,
				Limit:     c.tuning.PageLimit,
				Inclusive: true,
			})
			if e != nil {
				return e
			}
			return slackOK(resp.Ok, resp.Error)
		})
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Messages...)

		c.logger.Debug("Fetched history page",
			zap.String("channel_id", channelID),
			zap.Int("page_messages", len(resp.Messages)),
			zap.Int("total_messages", len(all)),
			zap.Bool("has_more", resp.HasMore))

		if !resp.HasMore || resp.ResponseMetaData.NextCursor == "" {
			break
		}
		cursor = resp.ResponseMetaData.NextCursor
	}

	return all, nil
}
