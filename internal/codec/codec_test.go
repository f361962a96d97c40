package codec

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackmichael/timepheus/internal/domain"
)

func sampleToken() domain.InteractionToken {
	end := time.Date(2024, 3, 5, 21, 0, 0, 0, time.UTC)
	return domain.InteractionToken{
		Channel:  "C123",
		ThreadTS: "1700000000.000100",
		Spans: []domain.Span{
			{Text: "tomorrow at 3pm", Start: time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC)},
			{Text: "March 5th 2-4pm", Start: time.Date(2024, 3, 5, 19, 0, 0, 0, time.UTC), End: &end},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	tok := sampleToken()

	encoded, err := Encode(tok)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, tok, decoded)
}

func TestRoundTripNoThread(t *testing.T) {
	tok := domain.InteractionToken{
		Channel: "C123",
		Spans: []domain.Span{
			{Text: "at noon", Start: time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)},
		},
	}

	encoded, err := Encode(tok)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, tok, decoded)
}

func TestEncodeRefusesOversizedToken(t *testing.T) {
	tok := domain.InteractionToken{Channel: "C123"}
	for i := 0; i < 100; i++ {
		tok.Spans = append(tok.Spans, domain.Span{
			Text:  strings.Repeat("tomorrow at 3pm ", 4),
			Start: time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC),
		})
	}

	_, err := Encode(tok)
	assert.ErrorIs(t, err, ErrTokenTooLarge)
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"not base64":     "!!!not-base64!!!",
		"not json":       base64.RawURLEncoding.EncodeToString([]byte("not json")),
		"missing fields": base64.RawURLEncoding.EncodeToString([]byte(`{"d":[]}`)),
	}
	for name, value := range cases {
		_, err := Decode(value)
		assert.ErrorIs(t, err, ErrTokenInvalid, name)
	}
}
