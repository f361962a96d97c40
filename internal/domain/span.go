package domain

import "time"

// Span is a substring of a message that refers to a specific time, resolved
// to absolute instants. Instants are UTC with second precision. Spans are
// value types and are never mutated after construction.
type Span struct {
	// Text is the exact substring matched in the original message, used as
	// the display anchor.
	Text string

	// Start is the resolved instant.
	Start time.Time

	// End is the end of a range expression ("2-4pm"). Nil for point-in-time
	// references. When present, End is never before Start.
	End *time.Time
}

// FormatSpec selects rendering verbosity for server-computed strings. The
// counts come from repeated format markers in the bracket syntax ("dd",
// "tttt"). Counts above four trigger the oversized-input notice instead of
// a formatted time.
type FormatSpec struct {
	DateMarkers int
	TimeMarkers int
}

// BracketSpan is a span produced by the structured bracket syntax, which
// carries its own verbosity selector.
type BracketSpan struct {
	Span   Span
	Format FormatSpec
}

// InteractionToken is the state attached to a message's interactive control
// so a later button press can be answered without re-parsing the original
// text. Serialized by the codec package into the control's value.
type InteractionToken struct {
	Channel  string
	ThreadTS string
	Spans    []Span
}
