package domain

// Event is the tagged union of inbound Slack events the bot routes. The
// variant set is closed; handlers dispatch with an exhaustive type switch.
type Event interface {
	isEvent()
}

// MessageEvent is an ordinary message posted to a channel the bot is in.
type MessageEvent struct {
	Channel  string
	TS       string
	ThreadTS string
	User     string
	Text     string

	// BotID is non-empty when the message was authored by an app or bot,
	// including this one's own replies.
	BotID string

	// SubType is Slack's message subtype (edits, joins, ...). Only plain
	// messages (empty subtype) are processed.
	SubType string
}

// MentionEvent is a message that explicitly mentions the bot.
type MentionEvent struct {
	Channel  string
	TS       string
	ThreadTS string
	User     string
	Text     string
}

// ReactionEvent is an emoji reaction added to a message.
type ReactionEvent struct {
	// User is the person who reacted, not the message author.
	User        string
	Reaction    string
	ItemChannel string
	ItemTS      string
}

// ActionEvent is a block-kit button press carrying an opaque codec payload.
type ActionEvent struct {
	User     string
	Channel  string
	ThreadTS string
	ActionID string
	Value    string
}

func (MessageEvent) isEvent()  {}
func (MentionEvent) isEvent()  {}
func (ReactionEvent) isEvent() {}
func (ActionEvent) isEvent()   {}
