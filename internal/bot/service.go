// Package bot is the event router: it classifies inbound Slack events,
// runs extraction and rendering, and delivers results through the gateway.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"

	"github.com/blackmichael/timepheus/internal/codec"
	"github.com/blackmichael/timepheus/internal/domain"
	"github.com/blackmichael/timepheus/internal/render"
)

// User-facing copy. Timepheus speaks lowercase.
const (
	hintText = ":timepheus_clock: hi there, i'm timepheus! i help you convert dates & times " +
		"in your messages to everyone's local time. if you don't like me _sob sob_ you can " +
		"turn me off :pleading_face: by using the \"/timepheus-optout\" command, and i'll " +
		"react instead of reply _(you will only see this message once)_"

	refusalText = "hmm, i couldn't find a date or time in there :thinking_face: give me " +
		"something like \"tomorrow at 3pm\" and i'll do my thing!"

	fallbackText = "sorry, i don't understand that button :( it may be from an older " +
		"version of me"

	optoutAckFmt = "you have opted out from my help :( now, i will only add the :%s: " +
		"reaction and will not reply publicly. to opt in again, use \"/timepheus-optin\". " +
		"hope to see you again soon!"

	optinAckText = "hey there! nice to see you again!! _(you have opted back in to " +
		"timepheus messages)_"
)

// Service routes inbound events. The bot's own user ID is resolved once at
// startup and injected here; it is read-only afterward.
type Service struct {
	botUserID string
	emoji     string
	gateway   domain.Gateway
	prefs     domain.PreferenceStore
	extractor domain.Extractor
	logger    *slog.Logger
}

func NewService(
	botUserID string,
	markerEmoji string,
	gateway domain.Gateway,
	prefs domain.PreferenceStore,
	extractor domain.Extractor,
	logger *slog.Logger,
) (*Service, error) {
	if botUserID == "" {
		return nil, fmt.Errorf("bot user ID is required")
	}
	if markerEmoji == "" {
		return nil, fmt.Errorf("marker emoji is required")
	}
	return &Service{
		botUserID: botUserID,
		emoji:     markerEmoji,
		gateway:   gateway,
		prefs:     prefs,
		extractor: extractor,
		logger:    logger,
	}, nil
}

// DispatchAsync runs an event handler in the background and returns
// immediately, so the webhook can be acknowledged within Slack's deadline.
// There is deliberately no await, ordering, cancellation, or timeout: a
// failed handler is logged and dies alone, and a later event may finish
// before an earlier one.
func (s *Service) DispatchAsync(ev domain.Event) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("event handler panicked", "event", fmt.Sprintf("%T", ev), "panic", r)
			}
		}()
		if err := s.HandleEvent(context.Background(), ev); err != nil {
			s.logger.Error("event handling failed", "event", fmt.Sprintf("%T", ev), "error", err)
		}
	}()
}

// HandleEvent dispatches on the event variant. The switch is exhaustive
// over the closed domain.Event union.
func (s *Service) HandleEvent(ctx context.Context, ev domain.Event) error {
	switch ev := ev.(type) {
	case domain.MessageEvent:
		return s.handleMessage(ctx, ev)
	case domain.MentionEvent:
		return s.handleMention(ctx, ev)
	case domain.ReactionEvent:
		return s.handleReaction(ctx, ev)
	case domain.ActionEvent:
		return s.handleAction(ctx, ev)
	default:
		return fmt.Errorf("unknown event variant %T", ev)
	}
}

func (s *Service) handleMessage(ctx context.Context, ev domain.MessageEvent) error {
	if ev.BotID != "" || ev.SubType != "" || ev.User == s.botUserID {
		return nil
	}
	// Messages that mention the bot arrive again as app_mention events;
	// handling them here would double-reply.
	if strings.Contains(ev.Text, "<@"+s.botUserID+">") {
		return nil
	}
	return s.processMessage(ctx, ev.Channel, ev.TS, ev.ThreadTS, ev.User, ev.Text, false)
}

func (s *Service) handleMention(ctx context.Context, ev domain.MentionEvent) error {
	return s.processMessage(ctx, ev.Channel, ev.TS, ev.ThreadTS, ev.User, ev.Text, true)
}

// processMessage is the shared message/mention path: extract with the
// author's timezone, then reply in place, react, or refuse.
func (s *Service) processMessage(ctx context.Context, channel, ts, threadTS, user, text string, mention bool) error {
	info, err := s.gateway.GetUserInfo(ctx, user)
	if err != nil {
		return fmt.Errorf("get user info: %w", err)
	}

	brackets, err := s.extractor.ExtractBrackets(text, info.Timezone)
	if err != nil {
		return fmt.Errorf("extract brackets: %w", err)
	}

	var spans []domain.Span
	if len(brackets) == 0 {
		spans, err = s.extractor.Extract(text, info.Timezone)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}
	}

	if len(brackets) == 0 && len(spans) == 0 {
		// Nothing actionable. Silence for ordinary messages; a direct
		// request deserves an answer.
		if mention {
			return s.gateway.PostMessage(ctx, domain.PostRequest{
				Channel:  channel,
				ThreadTS: replyThread(threadTS, ts),
				Text:     refusalText,
			})
		}
		return nil
	}

	// Mentions are bot-directed requests; opt-out never suppresses those.
	if !mention {
		optedOut, err := domain.IsOptedOut(ctx, s.prefs, user)
		if err != nil {
			return fmt.Errorf("check optout: %w", err)
		}
		if optedOut {
			if err := s.gateway.AddReaction(ctx, channel, ts, s.emoji); err != nil {
				return fmt.Errorf("add reaction: %w", err)
			}
			return nil
		}
	}

	req := domain.PostRequest{Channel: channel, ThreadTS: replyThread(threadTS, ts)}
	if len(brackets) > 0 {
		// Structured syntax gets server-computed strings in the author's
		// timezone; the button lets everyone else see their own.
		body, err := render.LocalText(brackets, info.Timezone)
		if err != nil {
			return fmt.Errorf("render local text: %w", err)
		}
		req.Text = body
		req.Blocks = render.WithConvertButton(
			[]slack.Block{slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, body, false, false), nil, nil)},
			s.token(channel, threadTS, bracketSpans(brackets)),
		)
	} else {
		req.Blocks = render.WithConvertButton(render.DateBlocks(spans), s.token(channel, threadTS, spans))
	}
	if err := s.gateway.PostMessage(ctx, req); err != nil {
		return fmt.Errorf("post reply: %w", err)
	}

	return s.maybeHint(ctx, channel, threadTS, user)
}

// maybeHint sends the one-time onboarding hint. The flag check is a plain
// read-then-write; a racing duplicate hint is tolerated.
func (s *Service) maybeHint(ctx context.Context, channel, threadTS, user string) error {
	hinted, err := domain.HasHinted(ctx, s.prefs, user)
	if err != nil {
		return fmt.Errorf("check hint: %w", err)
	}
	if hinted {
		return nil
	}
	if err := domain.MarkHinted(ctx, s.prefs, user); err != nil {
		return fmt.Errorf("mark hinted: %w", err)
	}
	if err := s.gateway.PostMessage(ctx, domain.PostRequest{
		Channel:   channel,
		ThreadTS:  threadTS,
		Ephemeral: true,
		User:      user,
		Text:      hintText,
	}); err != nil {
		return fmt.Errorf("post hint: %w", err)
	}
	return nil
}

func (s *Service) handleReaction(ctx context.Context, ev domain.ReactionEvent) error {
	// The bot reacting with its own marker must not trigger itself.
	if ev.User == s.botUserID || ev.Reaction != s.emoji {
		return nil
	}
	if ev.ItemChannel == "" || ev.ItemTS == "" {
		return nil
	}

	msg, err := s.gateway.GetMessage(ctx, ev.ItemChannel, ev.ItemTS)
	if err != nil {
		return fmt.Errorf("get message: %w", err)
	}
	if msg == nil {
		return nil
	}

	// The reaction means "show *me* this", so the reacting user's timezone
	// governs re-extraction, not the original author's.
	info, err := s.gateway.GetUserInfo(ctx, ev.User)
	if err != nil {
		return fmt.Errorf("get user info: %w", err)
	}
	spans, err := s.extractor.Extract(msg.Text, info.Timezone)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if len(spans) == 0 {
		return nil
	}

	if err := s.gateway.PostMessage(ctx, domain.PostRequest{
		Channel:   ev.ItemChannel,
		ThreadTS:  msg.ThreadTS,
		Ephemeral: true,
		User:      ev.User,
		Blocks:    render.DateBlocks(spans),
	}); err != nil {
		return fmt.Errorf("post ephemeral: %w", err)
	}
	return nil
}

func (s *Service) handleAction(ctx context.Context, ev domain.ActionEvent) error {
	if ev.ActionID != codec.ActionIDConvert {
		return s.fallback(ctx, ev)
	}
	tok, err := codec.Decode(ev.Value)
	if err != nil {
		s.logger.Warn("undecodable action payload", "action_id", ev.ActionID, "error", err)
		return s.fallback(ctx, ev)
	}

	info, err := s.gateway.GetUserInfo(ctx, ev.User)
	if err != nil {
		return fmt.Errorf("get user info: %w", err)
	}
	body, err := render.Localize(tok.Spans, info.Timezone)
	if err != nil {
		return fmt.Errorf("render local text: %w", err)
	}

	if err := s.gateway.PostMessage(ctx, domain.PostRequest{
		Channel:   tok.Channel,
		ThreadTS:  tok.ThreadTS,
		Ephemeral: true,
		User:      ev.User,
		Text:      body,
	}); err != nil {
		return fmt.Errorf("post ephemeral: %w", err)
	}
	return nil
}

// fallback answers an unintelligible button press with an ephemeral notice
// instead of letting the failure escape the pipeline.
func (s *Service) fallback(ctx context.Context, ev domain.ActionEvent) error {
	if err := s.gateway.PostMessage(ctx, domain.PostRequest{
		Channel:   ev.Channel,
		ThreadTS:  ev.ThreadTS,
		Ephemeral: true,
		User:      ev.User,
		Text:      fallbackText,
	}); err != nil {
		return fmt.Errorf("post fallback: %w", err)
	}
	return nil
}

// OptOut records an opt-out and returns the synchronous acknowledgment.
func (s *Service) OptOut(ctx context.Context, userID string) (string, error) {
	if err := domain.OptOut(ctx, s.prefs, userID); err != nil {
		return "", err
	}
	return fmt.Sprintf(optoutAckFmt, s.emoji), nil
}

// OptIn clears an opt-out and returns the synchronous acknowledgment.
func (s *Service) OptIn(ctx context.Context, userID string) (string, error) {
	if err := domain.OptIn(ctx, s.prefs, userID); err != nil {
		return "", err
	}
	return optinAckText, nil
}

func (s *Service) token(channel, threadTS string, spans []domain.Span) domain.InteractionToken {
	return domain.InteractionToken{Channel: channel, ThreadTS: threadTS, Spans: spans}
}

func bracketSpans(brackets []domain.BracketSpan) []domain.Span {
	spans := make([]domain.Span, len(brackets))
	for i, b := range brackets {
		spans[i] = b.Span
	}
	return spans
}

// replyThread roots the reply in the message's thread, or starts one.
func replyThread(threadTS, ts string) string {
	if threadTS != "" {
		return threadTS
	}
	return ts
}
