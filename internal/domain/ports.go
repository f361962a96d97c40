package domain

import (
	"context"

	"github.com/slack-go/slack"
)

// UserInfo is the subset of a Slack user profile the bot needs.
type UserInfo struct {
	ID       string
	Timezone string
}

// Message is a channel message fetched back from Slack.
type Message struct {
	User     string
	Text     string
	TS       string
	ThreadTS string
}

// PostRequest describes an outbound message.
type PostRequest struct {
	Channel  string
	ThreadTS string

	// Ephemeral posts the message visibly only to User.
	Ephemeral bool
	User      string

	// Text is markdown body text. Blocks, when set, takes precedence.
	Text   string
	Blocks []slack.Block
}

// Gateway is the authenticated Slack Web API surface the bot calls out
// through. Implementations surface the remote error code on failure; the
// core never retries.
type Gateway interface {
	// AuthTest identifies the bot's own user ID.
	AuthTest(ctx context.Context) (botUserID string, err error)

	GetUserInfo(ctx context.Context, userID string) (*UserInfo, error)

	// GetMessage fetches a single message by channel and timestamp. Returns
	// nil (and no error) when the message no longer exists.
	GetMessage(ctx context.Context, channel, ts string) (*Message, error)

	PostMessage(ctx context.Context, req PostRequest) error

	AddReaction(ctx context.Context, channel, ts, emoji string) error
}

// PreferenceStore persists per-user flags under namespaced string keys
// (hint.<user>, optout.<user>). The store serializes its own access; callers
// do read-then-write, so a race can at most duplicate a side effect.
type PreferenceStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	Set(ctx context.Context, key, value string) error

	Delete(ctx context.Context, key string) error
}

// Extractor turns message text plus a reference timezone into spans. The
// bot depends on this interface so handlers can be tested with a fixed
// clock.
type Extractor interface {
	// Extract scans free natural-language text. Matches without a
	// time-of-day component are discarded. An empty result is a no-op, not
	// an error.
	Extract(text, tz string) ([]Span, error)

	// ExtractBrackets scans for the structured {MM/DD HH:MM} syntax.
	ExtractBrackets(text, tz string) ([]BracketSpan, error)
}
