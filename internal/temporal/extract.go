package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/blackmichael/timepheus/internal/domain"
)

// Grammar fragments for the natural-language scanner. An expression is an
// optional date part followed by a required time part, so date-only
// references ("see you in March") never produce a span.
const (
	reRelDay    = `today|tonight|tomorrow|yesterday`
	reWeekday   = `(?:next\s+)?(?:mon|tues?|wednes|thurs?|fri|satur|sun)day`
	reMonthName = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sept?(?:ember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`
	reMonthDate = `(?:` + reMonthName + `)\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?`
	reNumDate   = `\d{1,2}/\d{1,2}(?:/\d{2,4})?`
	reDate      = `(?:` + reRelDay + `|` + reWeekday + `|` + reMonthDate + `|` + reNumDate + `)`

	reMeridiem = `[ap]\.?m\.?`
	reClock    = `\d{1,2}:\d{2}(?::\d{2})?`
	// A full time is unambiguous on its own: a colon, a meridiem, or a word.
	reFullTime = `(?:noon|midnight|` + reClock + `(?:\s*` + reMeridiem + `)?|\d{1,2}\s*` + reMeridiem + `)`
	reBareHour = `\d{1,2}`
	reRangeSep = `\s*(?:-|–|to|until)\s*`

	// A bare hour is accepted only when the range end disambiguates it
	// ("2-4pm") or when it follows "at" ("tomorrow at 3").
	reRange   = `(?:` + reFullTime + `(?:` + reRangeSep + reFullTime + `)?|` + reBareHour + reRangeSep + reFullTime + `)`
	reAtRange = `(?:` + reFullTime + `|` + reBareHour + `)(?:` + reRangeSep + `(?:` + reFullTime + `|` + reBareHour + `))?`

	reExpr = `(?:(?:` + reDate + `)(?:\s+at|\s*,)?\s+)?` + reRange +
		`|(?:(?:` + reDate + `)(?:\s*,)?\s+)?at\s+` + reAtRange
)

var (
	exprRE       = regexp.MustCompile(`(?i)\b(?:` + reExpr + `)\b`)
	datePrefixRE = regexp.MustCompile(`(?i)^` + reDate)
	relDayRE     = regexp.MustCompile(`(?i)^(?:` + reRelDay + `)$`)
	weekdayRE    = regexp.MustCompile(`(?i)^(next\s+)?((?:mon|tues?|wednes|thurs?|fri|satur|sun)day)$`)
	monthDateRE  = regexp.MustCompile(`(?i)^(` + reMonthName + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?$`)
	numDateRE    = regexp.MustCompile(`(?i)^(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?$`)
	timeTokenRE  = regexp.MustCompile(`(?i)noon|midnight|(\d{1,2})(?::(\d{2})(?::(\d{2}))?)?(?:\s*([ap])\.?m\.?)?`)
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tueday": time.Tuesday,
	"tuesday": time.Tuesday, "wednesday": time.Wednesday, "thursday": time.Thursday,
	"thurday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
}

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Extractor resolves date/time expressions in message text against a
// reference timezone. Relative expressions ("tomorrow") are anchored to the
// current wall-clock time in that timezone.
type Extractor struct {
	// Now supplies the reference clock. Defaults to time.Now; tests pin it.
	Now func() time.Time
}

func New() *Extractor {
	return &Extractor{Now: time.Now}
}

func (e *Extractor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Extract scans free-form text for natural-language time expressions.
// Results are ordered by position in the input; each span's Text is the
// exact matched substring. Matches without a time-of-day component are
// discarded. An empty result means the text contains nothing actionable.
func (e *Extractor) Extract(text, tz string) ([]domain.Span, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	now := e.now().In(loc)

	var spans []domain.Span
	for _, idx := range exprRE.FindAllStringIndex(text, -1) {
		matched := text[idx[0]:idx[1]]
		span, ok := resolve(matched, now, loc)
		if !ok {
			continue
		}
		spans = append(spans, span)
	}
	return spans, nil
}

// clockTok is one parsed time-of-day token before meridiem resolution.
type clockTok struct {
	hour, min, sec int
	mer            byte // 'a', 'p', or 0 when unstated
	word           bool // noon/midnight; already absolute
}

// resolve turns one matched expression into a span. Returns false when the
// match doesn't survive validation (out-of-range fields, no usable time).
func resolve(matched string, now time.Time, loc *time.Location) (domain.Span, bool) {
	year, month, day := now.Date()
	pmBias := false
	rest := matched

	if dm := datePrefixRE.FindString(rest); dm != "" {
		var ok bool
		year, month, day, pmBias, ok = resolveDate(dm, now)
		if !ok {
			return domain.Span{}, false
		}
		rest = rest[len(dm):]
	}

	toks := parseClocks(rest)
	if len(toks) == 0 {
		return domain.Span{}, false
	}

	startHour, ok := resolveHour(toks[0], 0, pmBias)
	if !ok || toks[0].min > 59 || toks[0].sec > 59 {
		return domain.Span{}, false
	}

	span := domain.Span{
		Text:  matched,
		Start: time.Date(year, month, day, startHour, toks[0].min, toks[0].sec, 0, loc).UTC(),
	}
	if len(toks) == 1 {
		return span, true
	}

	endHour, ok := resolveHour(toks[1], 0, pmBias)
	if !ok || toks[1].min > 59 || toks[1].sec > 59 {
		return domain.Span{}, false
	}
	end := time.Date(year, month, day, endHour, toks[1].min, toks[1].sec, 0, loc)

	// A bare start hour inherits the end's meridiem ("2-4pm" reads as 2pm)
	// unless that would put the start after the end ("11-1pm" reads as 11am).
	if toks[0].mer == 0 && !toks[0].word && toks[1].mer != 0 {
		if h, ok := resolveHour(toks[0], toks[1].mer, false); ok {
			inherited := time.Date(year, month, day, h, toks[0].min, toks[0].sec, 0, loc)
			if !inherited.After(end) {
				span.Start = inherited.UTC()
			} else {
				plain := time.Date(year, month, day, toks[0].hour%12, toks[0].min, toks[0].sec, 0, loc)
				span.Start = plain.UTC()
			}
		}
	}

	// Ranges never end before they start; roll the end forward across the
	// meridiem or midnight ("11pm-1am").
	endUTC := end.UTC()
	for endUTC.Before(span.Start) {
		endUTC = endUTC.Add(12 * time.Hour)
	}
	span.End = &endUTC
	return span, true
}

func resolveDate(dateText string, now time.Time) (int, time.Month, int, bool, bool) {
	year, month, day := now.Date()
	lower := strings.ToLower(strings.TrimSpace(dateText))

	switch {
	case relDayRE.MatchString(lower):
		var shift int
		switch lower {
		case "tomorrow":
			shift = 1
		case "yesterday":
			shift = -1
		}
		d := now.AddDate(0, 0, shift)
		return d.Year(), d.Month(), d.Day(), lower == "tonight", true

	case weekdayRE.MatchString(lower):
		m := weekdayRE.FindStringSubmatch(lower)
		wd, ok := weekdays[m[2]]
		if !ok {
			return 0, 0, 0, false, false
		}
		delta := (int(wd) - int(now.Weekday()) + 7) % 7
		if delta == 0 && m[1] != "" {
			delta = 7
		}
		d := now.AddDate(0, 0, delta)
		return d.Year(), d.Month(), d.Day(), false, true

	case monthDateRE.MatchString(lower):
		m := monthDateRE.FindStringSubmatch(lower)
		mon, ok := months[m[1][:3]]
		if !ok {
			return 0, 0, 0, false, false
		}
		d, _ := strconv.Atoi(m[2])
		if d < 1 || d > 31 {
			return 0, 0, 0, false, false
		}
		y := year
		if m[3] != "" {
			y, _ = strconv.Atoi(m[3])
		}
		return y, mon, d, false, true

	case numDateRE.MatchString(lower):
		m := numDateRE.FindStringSubmatch(lower)
		mon, _ := strconv.Atoi(m[1])
		d, _ := strconv.Atoi(m[2])
		if mon < 1 || mon > 12 || d < 1 || d > 31 {
			return 0, 0, 0, false, false
		}
		y := year
		if m[3] != "" {
			y, _ = strconv.Atoi(m[3])
			if y < 100 {
				y += 2000
			}
		}
		return y, time.Month(mon), d, false, true
	}

	return year, month, day, false, true
}

func parseClocks(text string) []clockTok {
	var toks []clockTok
	for _, m := range timeTokenRE.FindAllStringSubmatch(text, -1) {
		whole := strings.ToLower(m[0])
		switch whole {
		case "noon":
			toks = append(toks, clockTok{hour: 12, word: true})
			continue
		case "midnight":
			toks = append(toks, clockTok{hour: 0, word: true})
			continue
		}
		if m[1] == "" {
			continue
		}
		tok := clockTok{}
		tok.hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			tok.min, _ = strconv.Atoi(m[2])
		}
		if m[3] != "" {
			tok.sec, _ = strconv.Atoi(m[3])
		}
		if m[4] != "" {
			tok.mer = strings.ToLower(m[4])[0]
		}
		toks = append(toks, tok)
	}
	return toks
}

// resolveHour applies meridiem rules to a token's hour. Bare early hours
// read as afternoon: "at 3" means 15:00, "at 10" means 10:00.
func resolveHour(t clockTok, inherit byte, pmBias bool) (int, bool) {
	if t.word {
		return t.hour, true
	}
	mer := t.mer
	if mer == 0 {
		mer = inherit
	}
	switch {
	case mer != 0:
		if t.hour < 1 || t.hour > 12 {
			return 0, false
		}
		h := t.hour % 12
		if mer == 'p' {
			h += 12
		}
		return h, true
	case pmBias:
		if t.hour > 23 {
			return 0, false
		}
		if t.hour < 12 {
			return t.hour + 12, true
		}
		return t.hour, true
	default:
		if t.hour > 23 {
			return 0, false
		}
		if t.hour >= 1 && t.hour <= 6 {
			return t.hour + 12, true
		}
		return t.hour, true
	}
}
