package render

import (
	"strings"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackmichael/timepheus/internal/codec"
	"github.com/blackmichael/timepheus/internal/domain"
)

func pointSpan() domain.Span {
	return domain.Span{
		Text:  "tomorrow at 3pm",
		Start: time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC),
	}
}

func rangeSpan() domain.Span {
	end := time.Date(2024, 3, 5, 21, 0, 0, 0, time.UTC)
	return domain.Span{
		Text:  "March 5th 2-4pm",
		Start: time.Date(2024, 3, 5, 19, 0, 0, 0, time.UTC),
		End:   &end,
	}
}

func TestDateBlocksPoint(t *testing.T) {
	blocks := DateBlocks([]domain.Span{pointSpan()})
	require.Len(t, blocks, 1)

	rich, ok := blocks[0].(*slack.RichTextBlock)
	require.True(t, ok)
	require.Len(t, rich.Elements, 1)

	section, ok := rich.Elements[0].(*slack.RichTextSection)
	require.True(t, ok)
	require.Len(t, section.Elements, 3)

	anchor, ok := section.Elements[0].(*slack.RichTextSectionTextElement)
	require.True(t, ok)
	assert.Equal(t, "tomorrow at 3pm", anchor.Text)
	assert.True(t, anchor.Style.Code)

	date, ok := section.Elements[2].(*slack.RichTextSectionDateElement)
	require.True(t, ok)
	assert.EqualValues(t, pointSpan().Start.Unix(), date.Timestamp)
}

func TestDateBlocksRangeOrdersStartBeforeEnd(t *testing.T) {
	blocks := DateBlocks([]domain.Span{rangeSpan()})
	rich := blocks[0].(*slack.RichTextBlock)
	section := rich.Elements[0].(*slack.RichTextSection)
	require.Len(t, section.Elements, 5)

	start, ok := section.Elements[2].(*slack.RichTextSectionDateElement)
	require.True(t, ok)
	connector, ok := section.Elements[3].(*slack.RichTextSectionTextElement)
	require.True(t, ok)
	end, ok := section.Elements[4].(*slack.RichTextSectionDateElement)
	require.True(t, ok)

	assert.Equal(t, " to ", connector.Text)
	assert.Less(t, int64(start.Timestamp), int64(end.Timestamp))
}

func TestRenderingIsPure(t *testing.T) {
	spans := []domain.Span{pointSpan(), rangeSpan()}
	assert.Equal(t, DateBlocks(spans), DateBlocks(spans))

	brackets := []domain.BracketSpan{{Span: rangeSpan(), Format: domain.FormatSpec{DateMarkers: 2, TimeMarkers: 2}}}
	first, err := LocalText(brackets, "America/New_York")
	require.NoError(t, err)
	second, err := LocalText(brackets, "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLocalTextStyles(t *testing.T) {
	span := domain.Span{Text: "{03/05 14:30}", Start: time.Date(2024, 3, 5, 19, 30, 0, 0, time.UTC)}

	short, err := LocalText([]domain.BracketSpan{{Span: span}}, "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "`{03/05 14:30}`: 3/5/2024 at 2:30 PM", short)

	verbose, err := LocalText([]domain.BracketSpan{{
		Span:   span,
		Format: domain.FormatSpec{DateMarkers: 4, TimeMarkers: 2},
	}}, "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "`{03/05 14:30}`: Tuesday, March 5, 2024 at 2:30 PM EST", verbose)
}

func TestLocalTextOversizedMarkersGetNotice(t *testing.T) {
	span := domain.Span{Text: "{03/05 14:30 ddddd}", Start: time.Date(2024, 3, 5, 19, 30, 0, 0, time.UTC)}

	for _, format := range []domain.FormatSpec{
		{DateMarkers: 5},
		{TimeMarkers: 5},
		{DateMarkers: 7, TimeMarkers: 7},
	} {
		out, err := LocalText([]domain.BracketSpan{{Span: span, Format: format}}, "UTC")
		require.NoError(t, err)
		assert.Contains(t, out, OversizedNotice)
		assert.NotContains(t, out, "2024")
	}
}

func TestLocalTextRange(t *testing.T) {
	out, err := LocalText([]domain.BracketSpan{{Span: rangeSpan()}}, "America/New_York")
	require.NoError(t, err)

	startIdx := strings.Index(out, "2:00 PM")
	endIdx := strings.Index(out, "4:00 PM")
	require.GreaterOrEqual(t, startIdx, 0)
	require.GreaterOrEqual(t, endIdx, 0)
	assert.Less(t, startIdx, endIdx)
	assert.Contains(t, out, " to ")
}

func TestWithConvertButton(t *testing.T) {
	tok := domain.InteractionToken{Channel: "C123", Spans: []domain.Span{pointSpan()}}
	blocks := WithConvertButton(DateBlocks(tok.Spans), tok)
	require.Len(t, blocks, 2)

	actions, ok := blocks[1].(*slack.ActionBlock)
	require.True(t, ok)
	require.Len(t, actions.Elements.ElementSet, 1)

	button, ok := actions.Elements.ElementSet[0].(*slack.ButtonBlockElement)
	require.True(t, ok)
	assert.Equal(t, codec.ActionIDConvert, button.ActionID)

	decoded, err := codec.Decode(button.Value)
	require.NoError(t, err)
	assert.Equal(t, tok, decoded)
}

func TestWithConvertButtonDropsOversizedToken(t *testing.T) {
	tok := domain.InteractionToken{Channel: "C123"}
	for i := 0; i < 200; i++ {
		tok.Spans = append(tok.Spans, pointSpan())
	}

	base := DateBlocks([]domain.Span{pointSpan()})
	blocks := WithConvertButton(base, tok)
	assert.Equal(t, base, blocks)
}
