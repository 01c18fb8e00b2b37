package logfile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/volttrace/volttrace/internal/domain"
)

// MinuteLine is one parsed minute window: the HH:MM:SS header and the values
// appended after it. A line cut short by a restart parses fine, it just
// carries fewer than WindowSize values.
type MinuteLine struct {
	Time   string
	Values []float64
}

// ParseDay parses a whole day file back into its minute lines. Splitting on
// blank-line boundaries, then " --> ", then ", " reconstructs exactly the
// count and order of values that were appended.
func ParseDay(data []byte) ([]MinuteLine, error) {
	var out []MinuteLine
	for _, line := range Lines(data) {
		header, rest, ok := strings.Cut(line, headerSeparator)
		if !ok {
			return nil, fmt.Errorf("logfile: line %q has no header separator", truncate(line))
		}
		ml := MinuteLine{Time: header}
		for _, field := range strings.Split(rest, valueSeparator) {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("logfile: bad value %q: %w", field, err)
			}
			ml.Values = append(ml.Values, v)
		}
		out = append(out, ml)
	}
	return out, nil
}

// Lines returns the non-empty lines of a day file in order. The trailing
// line may be unterminated if the file is still being appended.
func Lines(data []byte) []string {
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Filename builds "<prefix><YYYY-MM-DD>.txt".
func Filename(prefix string, ts time.Time) string {
	return prefix + ts.Format(domain.DateLayout) + fileExtension
}

// SplitDayFile reports whether name matches "<prefix><YYYY-MM-DD>.txt" and
// returns the embedded date.
func SplitDayFile(name, prefix string) (date string, ok bool) {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, fileExtension) {
		return "", false
	}
	date = strings.TrimSuffix(strings.TrimPrefix(name, prefix), fileExtension)
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return "", false
	}
	return date, true
}

func truncate(s string) string {
	const max = 32
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
