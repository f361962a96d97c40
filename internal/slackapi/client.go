// Package slackapi adapts the Slack Web API to the domain.Gateway port.
package slackapi

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/blackmichael/timepheus/internal/domain"
)

// Client wraps an authenticated slack.Client. Errors from the Web API carry
// the remote error code; they are surfaced unchanged and never retried.
type Client struct {
	api *slack.Client
}

// NewClient creates a client authenticated with the bot OAuth token.
func NewClient(botToken string) *Client {
	return &Client{api: slack.New(botToken)}
}

// AuthTest returns the bot's own user ID.
func (c *Client) AuthTest(ctx context.Context) (string, error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return "", fmt.Errorf("auth.test: %w", err)
	}
	return resp.UserID, nil
}

// GetUserInfo fetches a user's profile. Users without a timezone (rare, but
// Slack allows it) default to UTC.
func (c *Client) GetUserInfo(ctx context.Context, userID string) (*domain.UserInfo, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("users.info %s: %w", userID, err)
	}
	tz := user.TZ
	if tz == "" {
		tz = "UTC"
	}
	return &domain.UserInfo{ID: user.ID, Timezone: tz}, nil
}

// GetMessage fetches a single message by exact timestamp. Returns nil when
// the message is gone.
func (c *Client) GetMessage(ctx context.Context, channel, ts string) (*domain.Message, error) {
	msgs, _, _, err := c.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: channel,
		Timestamp: ts,
		Oldest:    ts,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("conversations.replies %s/%s: %w", channel, ts, err)
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	m := msgs[0]
	return &domain.Message{
		User:     m.User,
		Text:     m.Text,
		TS:       m.Timestamp,
		ThreadTS: m.ThreadTimestamp,
	}, nil
}

// PostMessage delivers a message, ephemerally when requested.
func (c *Client) PostMessage(ctx context.Context, req domain.PostRequest) error {
	var opts []slack.MsgOption
	if req.Text != "" {
		opts = append(opts, slack.MsgOptionText(req.Text, false))
	}
	if len(req.Blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(req.Blocks...))
	}
	if req.ThreadTS != "" {
		opts = append(opts, slack.MsgOptionTS(req.ThreadTS))
	}

	var err error
	if req.Ephemeral {
		_, err = c.api.PostEphemeralContext(ctx, req.Channel, req.User, opts...)
		if err != nil {
			return fmt.Errorf("chat.postEphemeral: %w", err)
		}
		return nil
	}
	_, _, err = c.api.PostMessageContext(ctx, req.Channel, opts...)
	if err != nil {
		return fmt.Errorf("chat.postMessage: %w", err)
	}
	return nil
}

// AddReaction adds an emoji reaction to a message.
func (c *Client) AddReaction(ctx context.Context, channel, ts, emoji string) error {
	if err := c.api.AddReactionContext(ctx, emoji, slack.NewRefToMessage(channel, ts)); err != nil {
		return fmt.Errorf("reactions.add: %w", err)
	}
	return nil
}
