package sqlite

import (
	"fmt"
	"time"
)

// timeFormats covers the layouts SQLite emits for CURRENT_TIMESTAMP columns
// depending on how the value was written.
var timeFormats = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

func parseTime(value string) (time.Time, error) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
