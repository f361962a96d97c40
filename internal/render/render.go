// Package render turns resolved spans into Slack output. Functions here are
// pure; all posting happens in the caller.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/blackmichael/timepheus/internal/codec"
	"github.com/blackmichael/timepheus/internal/domain"
)

// dateTokenFormat delegates live formatting to each viewer's client, so the
// rendered time is always local and locale-correct for whoever reads it.
const (
	dateTokenFormat = "{date_slash} at {time} ({ago})"
	dateFallback    = "<Failed to display time>"
	rangeConnector  = " to "
)

// OversizedNotice replaces a formatted time when a bracket expression asks
// for more than four repeated format markers. A guard rail, not an error.
const OversizedNotice = "whoa, that's a lot of format letters! i can't count that high, so no time for you :P"

// DateBlocks renders spans as a rich_text block of platform-native date
// elements, one section per span, anchored by the matched text in code style.
func DateBlocks(spans []domain.Span) []slack.Block {
	sections := make([]slack.RichTextElement, 0, len(spans))
	for _, s := range spans {
		fallback := dateFallback
		elements := []slack.RichTextSectionElement{
			slack.NewRichTextSectionTextElement(s.Text, &slack.RichTextSectionTextStyle{Code: true}),
			slack.NewRichTextSectionTextElement(": ", nil),
			slack.NewRichTextSectionDateElement(s.Start.Unix(), dateTokenFormat, nil, &fallback),
		}
		if s.End != nil {
			elements = append(elements,
				slack.NewRichTextSectionTextElement(rangeConnector, nil),
				slack.NewRichTextSectionDateElement(s.End.Unix(), dateTokenFormat, nil, &fallback),
			)
		}
		sections = append(sections, slack.NewRichTextSection(elements...))
	}
	return []slack.Block{slack.NewRichTextBlock("", sections...)}
}

// WithConvertButton appends a "show in my timezone" button carrying the
// encoded token. When the token doesn't fit the button's payload limit the
// blocks are returned unchanged; the feature degrades, never overflows.
func WithConvertButton(blocks []slack.Block, tok domain.InteractionToken) []slack.Block {
	value, err := codec.Encode(tok)
	if err != nil {
		return blocks
	}
	button := slack.NewButtonBlockElement(
		codec.ActionIDConvert,
		value,
		slack.NewTextBlockObject(slack.PlainTextType, "show in my timezone", true, false),
	)
	return append(blocks, slack.NewActionBlock("", button))
}

// LocalText renders bracket spans as server-computed strings in the viewer's
// timezone, one line per span, using each span's verbosity markers.
func LocalText(spans []domain.BracketSpan, tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("load timezone %q: %w", tz, err)
	}

	lines := make([]string, 0, len(spans))
	for _, bs := range spans {
		lines = append(lines, fmt.Sprintf("`%s`: %s", bs.Span.Text, localInstant(bs, loc)))
	}
	return strings.Join(lines, "\n"), nil
}

// Localize wraps plain spans with default verbosity, for paths that carry no
// format markers (button presses, decoded tokens).
func Localize(spans []domain.Span, tz string) (string, error) {
	wrapped := make([]domain.BracketSpan, len(spans))
	for i, s := range spans {
		wrapped[i] = domain.BracketSpan{Span: s}
	}
	return LocalText(wrapped, tz)
}

func localInstant(bs domain.BracketSpan, loc *time.Location) string {
	dateLayout, ok := dateLayoutFor(bs.Format.DateMarkers)
	if !ok {
		return OversizedNotice
	}
	timeLayout, ok := timeLayoutFor(bs.Format.TimeMarkers)
	if !ok {
		return OversizedNotice
	}

	layout := dateLayout + " at " + timeLayout
	out := bs.Span.Start.In(loc).Format(layout)
	if bs.Span.End != nil {
		out += rangeConnector + bs.Span.End.In(loc).Format(layout)
	}
	return out
}

func dateLayoutFor(markers int) (string, bool) {
	switch markers {
	case 0, 1:
		return "1/2/2006", true
	case 2:
		return "Jan 2, 2006", true
	case 3:
		return "January 2, 2006", true
	case 4:
		return "Monday, January 2, 2006", true
	}
	return "", false
}

func timeLayoutFor(markers int) (string, bool) {
	switch markers {
	case 0, 1:
		return "3:04 PM", true
	case 2:
		return "3:04 PM MST", true
	case 3:
		return "3:04:05 PM MST", true
	case 4:
		return "3:04:05 PM -07:00 (MST)", true
	}
	return "", false
}
