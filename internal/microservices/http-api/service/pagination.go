package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/huger6/filseries/internal/microservices/http-api/repository"
)

// Pagination limits for infinite-scroll pages.
const (
	MinPageLimit     = 1
	MaxPageLimit     = 50
	DefaultPageLimit = 30
)

var ErrInvalidCursor = errors.New("invalid pagination cursor")

// iso8601Layouts cover the timestamp shapes clients send back as cursors:
// RFC 3339 with zone or Z suffix, and a bare timestamp treated as UTC.
var iso8601Layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ValidatePageRequest normalizes client pagination input into a cursor and a
// page size. The limit is clamped into [MinPageLimit, MaxPageLimit], never
// rejected. lastID and lastDate must be supplied together or not at all.
// Pure validation; no side effects.
func ValidatePageRequest(lastID *int64, lastDate *string, limit *int) (*repository.Cursor, int, error) {
	pageSize := DefaultPageLimit
	if limit != nil {
		pageSize = *limit
		if pageSize < MinPageLimit {
			pageSize = MinPageLimit
		} else if pageSize > MaxPageLimit {
			pageSize = MaxPageLimit
		}
	}

	if (lastID != nil) != (lastDate != nil) {
		return nil, 0, fmt.Errorf("%w: last_id and last_date must be provided together", ErrInvalidCursor)
	}
	if lastID == nil {
		return nil, pageSize, nil
	}

	if *lastID <= 0 {
		return nil, 0, fmt.Errorf("%w: last_id must be a positive integer", ErrInvalidCursor)
	}

	ts, err := parseCursorTime(*lastDate)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: last_date must be an ISO-8601 timestamp", ErrInvalidCursor)
	}

	return &repository.Cursor{LastID: *lastID, LastDate: ts}, pageSize, nil
}

func parseCursorTime(value string) (time.Time, error) {
	for _, layout := range iso8601Layouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}
