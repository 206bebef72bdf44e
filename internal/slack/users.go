package slack

import (
	"context"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// UnknownUser is the sentinel display name for identifiers that could not
// be resolved.
const UnknownUser = "Unknown User"

// ResolveUsers maps every requested identifier to a display name. The
// bulk channel-membership endpoint is attempted first; it only returns
// identifiers, so in practice the map is filled by individual profile
// lookups, batched and paced to respect rate limits. Lookup failures map
// the identifier to UnknownUser and never abort resolution of the rest.
// The returned map always has exactly one non-empty entry per requested
// identifier. The only error returned is context cancellation.
func (c *Client) ResolveUsers(ctx context.Context, channelID string, ids []string) (map[string]string, error) {
	resolved := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return resolved, nil
	}

	c.seedFromMembers(ctx, channelID, resolved)

	var pending []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := resolved[id]; !ok {
			pending = append(pending, id)
		}
	}

	for start := 0; start < len(pending); start += c.tuning.UserBatchSize {
		end := start + c.tuning.UserBatchSize
		if end > len(pending) {
			end = len(pending)
		}

		if start > 0 {
			if err := c.sleep(ctx, c.tuning.UserBatchDelay); err != nil {
				return nil, err
			}
		}

		for i, id := range pending[start:end] {
			if i > 0 {
				if err := c.sleep(ctx, c.tuning.UserRequestDelay); err != nil {
					return nil, err
				}
			}
			resolved[id] = c.lookupDisplayName(ctx, id)
		}
	}

	// Totality: every requested identifier gets some value.
	for _, id := range ids {
		if resolved[id] == "" {
			resolved[id] = UnknownUser
		}
	}

	return resolved, nil
}

// seedFromMembers attempts the bulk channel-membership lookup. The
// endpoint returns identifiers without profile data, so there is nothing
// usable to seed the map with; the attempt is still made so the cheap
// path is exercised first, and any future profile payload would be
// picked up here. Failures just skip to individual lookups.
//
// TODO: resolve members via a users.list diff instead of discarding the
// membership response once the export supports whole-workspace runs.
func (c *Client) seedFromMembers(ctx context.Context, channelID string, resolved map[string]string) {
	members, _, err := c.api.GetUsersInConversationContext(ctx, &slack.GetUsersInConversationParameters{
		ChannelID: channelID,
		Limit:     c.tuning.PageLimit,
	})
	if err != nil {
		c.logger.Debug("Bulk membership lookup failed, using individual lookups",
			zap.String("channel_id", channelID),
			zap.Error(err))
		return
	}
	c.logger.Debug("Bulk membership lookup returned identifiers only",
		zap.String("channel_id", channelID),
		zap.Int("members", len(members)))
}

// lookupDisplayName fetches one user profile and picks the best display
// name: real name, then profile display name, then profile real name,
// then the account handle. Failures map to the UnknownUser sentinel.
func (c *Client) lookupDisplayName(ctx context.Context, id string) string {
	var user *slack.User
	err := c.withRetry(ctx, "users.info", func() error {
		var e error
		user, e = c.api.GetUserInfoContext(ctx, id)
		return e
	})
	if err != nil {
		c.logger.Warn("User lookup failed, using sentinel",
			zap.String("user_id", id),
			zap.Error(err))
		return UnknownUser
	}

	switch {
	case user.RealName != "":
		return user.RealName
	case user.Profile.DisplayName != "":
		return user.Profile.DisplayName
	case user.Profile.RealName != "":
		return user.Profile.RealName
	case user.Name != "":
		return user.Name
	}
	return UnknownUser
}
