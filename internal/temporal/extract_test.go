package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixed reference clock: 2024-01-01T12:00:00Z (07:00 in New York).
func fixedExtractor() *Extractor {
	return &Extractor{Now: func() time.Time {
		return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	}}
}

func TestExtractTomorrowAfternoon(t *testing.T) {
	spans, err := fixedExtractor().Extract("let's meet tomorrow at 3pm", "America/New_York")
	require.NoError(t, err)
	require.Len(t, spans, 1)

	assert.Equal(t, "tomorrow at 3pm", spans[0].Text)
	assert.Equal(t, time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC), spans[0].Start)
	assert.Nil(t, spans[0].End)
}

func TestExtractNoTemporalContent(t *testing.T) {
	ex := fixedExtractor()
	for _, text := range []string{
		"",
		"hello there",
		"the meeting went well",
		"i bought 3 apples and 12 oranges",
	} {
		spans, err := ex.Extract(text, "UTC")
		require.NoError(t, err)
		assert.Empty(t, spans, "text %q", text)

		// re-running yields the same empty result
		again, err := ex.Extract(text, "UTC")
		require.NoError(t, err)
		assert.Equal(t, spans, again)
	}
}

func TestExtractDiscardsDateOnlyReferences(t *testing.T) {
	ex := fixedExtractor()
	for _, text := range []string{
		"see you in March",
		"see you March 5th",
		"let's do it tomorrow",
		"next friday works for me",
	} {
		spans, err := ex.Extract(text, "UTC")
		require.NoError(t, err)
		assert.Empty(t, spans, "text %q", text)
	}

	spans, err := ex.Extract("see you March 5th at 2pm", "America/New_York")
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "March 5th at 2pm", spans[0].Text)
	assert.Equal(t, time.Date(2024, 3, 5, 19, 0, 0, 0, time.UTC), spans[0].Start)
}

func TestExtractRange(t *testing.T) {
	spans, err := fixedExtractor().Extract("March 5th 2-4pm", "America/New_York")
	require.NoError(t, err)
	require.Len(t, spans, 1)

	assert.Equal(t, "March 5th 2-4pm", spans[0].Text)
	assert.Equal(t, time.Date(2024, 3, 5, 19, 0, 0, 0, time.UTC), spans[0].Start)
	require.NotNil(t, spans[0].End)
	assert.Equal(t, time.Date(2024, 3, 5, 21, 0, 0, 0, time.UTC), *spans[0].End)
}

func TestExtractRangeInheritsMeridiem(t *testing.T) {
	spans, err := fixedExtractor().Extract("dinner 8-10pm", "UTC")
	require.NoError(t, err)
	require.Len(t, spans, 1)

	assert.Equal(t, time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC), spans[0].Start)
	require.NotNil(t, spans[0].End)
	assert.Equal(t, time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC), *spans[0].End)
}

func TestExtractRangeNeverEndsBeforeStart(t *testing.T) {
	spans, err := fixedExtractor().Extract("party 11pm-1am", "America/New_York")
	require.NoError(t, err)
	require.Len(t, spans, 1)
	require.NotNil(t, spans[0].End)
	assert.False(t, spans[0].End.Before(spans[0].Start))
}

func TestExtractOrderedByPosition(t *testing.T) {
	spans, err := fixedExtractor().Extract("standup at 9am and review at 15:30", "UTC")
	require.NoError(t, err)
	require.Len(t, spans, 2)

	assert.Contains(t, spans[0].Text, "9am")
	assert.Contains(t, spans[1].Text, "15:30")
	assert.True(t, spans[0].Start.Before(spans[1].Start))
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), spans[0].Start)
	assert.Equal(t, time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC), spans[1].Start)
}

func TestExtractBareHourAfterAt(t *testing.T) {
	// early bare hours read as afternoon
	spans, err := fixedExtractor().Extract("tomorrow at 3", "UTC")
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "tomorrow at 3", spans[0].Text)
	assert.Equal(t, time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC), spans[0].Start)
}

func TestExtractNumericDate(t *testing.T) {
	spans, err := fixedExtractor().Extract("3/5 at 2pm works", "UTC")
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "3/5 at 2pm", spans[0].Text)
	assert.Equal(t, time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC), spans[0].Start)
}

func TestExtractNoon(t *testing.T) {
	spans, err := fixedExtractor().Extract("lunch tomorrow at noon", "UTC")
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), spans[0].Start)
}

func TestExtractInvalidTimezone(t *testing.T) {
	_, err := fixedExtractor().Extract("tomorrow at 3pm", "Not/AZone")
	assert.Error(t, err)
}
