package service

import (
	"fmt"
	"strings"
	"time"

	apperrors "eventify-backend/pkg/app_errors"
)

var eventDateTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// ParseEventDateTime combines a display date (YYYY-MM-DD) and time (HH:MM[:SS])
// into an instant in loc. It fails with ErrInvalidEventDateTime rather than
// returning a zero instant.
func ParseEventDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("%w: date and time are both required", apperrors.ErrInvalidEventDateTime)
	}
	if loc == nil {
		loc = time.UTC
	}

	combined := date + "T" + clock
	for _, layout := range eventDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, combined, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidEventDateTime, combined)
}
