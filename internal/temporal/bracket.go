package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/blackmichael/timepheus/internal/domain"
)

// Bracket syntax: {[YYYY/]MM/DD HH:MM[:SS] [d...] [t...]}. The date defaults
// to today and the year to the current year. Trailing marker runs select
// rendering verbosity per component; they never change the instant.
var (
	bracketRE     = regexp.MustCompile(`\{[^{}]+\}`)
	bracketBodyRE = regexp.MustCompile(`^\{(?:(?:(\d{4})/)?(\d{1,2})/(\d{1,2})\s+)?(\d{1,2}):(\d{2})(?::(\d{2}))?(?:\s+(d+))?(?:\s+(t+))?\}$`)
)

// ExtractBrackets scans text for structured bracket expressions. Malformed
// brackets are skipped, not errors. Span.Text includes the braces.
func (e *Extractor) ExtractBrackets(text, tz string) ([]domain.BracketSpan, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	now := e.now().In(loc)

	var spans []domain.BracketSpan
	for _, matched := range bracketRE.FindAllString(text, -1) {
		m := bracketBodyRE.FindStringSubmatch(matched)
		if m == nil {
			continue
		}

		year, month, day := now.Date()
		if m[2] != "" {
			mon, _ := strconv.Atoi(m[2])
			d, _ := strconv.Atoi(m[3])
			if mon < 1 || mon > 12 || d < 1 || d > 31 {
				continue
			}
			month, day = time.Month(mon), d
			if m[1] != "" {
				year, _ = strconv.Atoi(m[1])
			}
		}

		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		sec := 0
		if m[6] != "" {
			sec, _ = strconv.Atoi(m[6])
		}
		if hour > 23 || minute > 59 || sec > 59 {
			continue
		}

		spans = append(spans, domain.BracketSpan{
			Span: domain.Span{
				Text:  matched,
				Start: time.Date(year, month, day, hour, minute, sec, 0, loc).UTC(),
			},
			Format: domain.FormatSpec{
				DateMarkers: len(m[7]),
				TimeMarkers: len(m[8]),
			},
		})
	}
	return spans, nil
}
