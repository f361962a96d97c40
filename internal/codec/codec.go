// Package codec serializes interaction tokens onto block-kit button values
// so a later press can be answered without re-parsing the original message.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/blackmichael/timepheus/internal/domain"
)

// ActionIDConvert names the "show in my timezone" button. The action ID
// doubles as the wire schema version: an incompatible encoding ships under a
// new ID so both can coexist during rollout.
const ActionIDConvert = "timepheus_convert_v1"

// maxEncodedLen is Slack's limit on a button element's value field. Encode
// refuses rather than produce an oversized payload; callers drop the button.
const maxEncodedLen = 2000

var (
	// ErrTokenTooLarge means the encoded token would exceed the button
	// value limit.
	ErrTokenTooLarge = errors.New("codec: encoded token exceeds payload limit")

	// ErrTokenInvalid means the payload is empty, malformed, or not ours.
	ErrTokenInvalid = errors.New("codec: invalid token payload")
)

// Wire form keeps instants as unix seconds, matching the spans' second
// precision, so decode(encode(t)) reproduces t exactly.
type wireToken struct {
	Channel string     `json:"c"`
	Thread  string     `json:"t,omitempty"`
	Spans   []wireSpan `json:"d"`
}

type wireSpan struct {
	Text  string `json:"x"`
	Start int64  `json:"s"`
	End   *int64 `json:"e,omitempty"`
}

// Encode serializes a token into an opaque button value.
func Encode(tok domain.InteractionToken) (string, error) {
	wire := wireToken{
		Channel: tok.Channel,
		Thread:  tok.ThreadTS,
		Spans:   make([]wireSpan, len(tok.Spans)),
	}
	for i, s := range tok.Spans {
		ws := wireSpan{Text: s.Text, Start: s.Start.Unix()}
		if s.End != nil {
			end := s.End.Unix()
			ws.End = &end
		}
		wire.Spans[i] = ws
	}

	raw, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	if len(encoded) > maxEncodedLen {
		return "", ErrTokenTooLarge
	}
	return encoded, nil
}

// Decode parses a button value back into a token. Any malformed input
// yields ErrTokenInvalid; callers turn that into the user-visible fallback.
func Decode(value string) (domain.InteractionToken, error) {
	if value == "" {
		return domain.InteractionToken{}, ErrTokenInvalid
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return domain.InteractionToken{}, ErrTokenInvalid
	}
	var wire wireToken
	if err := json.Unmarshal(raw, &wire); err != nil {
		return domain.InteractionToken{}, ErrTokenInvalid
	}
	if wire.Channel == "" {
		return domain.InteractionToken{}, ErrTokenInvalid
	}

	tok := domain.InteractionToken{
		Channel:  wire.Channel,
		ThreadTS: wire.Thread,
		Spans:    make([]domain.Span, len(wire.Spans)),
	}
	for i, ws := range wire.Spans {
		s := domain.Span{Text: ws.Text, Start: time.Unix(ws.Start, 0).UTC()}
		if ws.End != nil {
			end := time.Unix(*ws.End, 0).UTC()
			s.End = &end
		}
		tok.Spans[i] = s
	}
	return tok, nil
}
