package timeseries

import (
	"fmt"
	"time"
)

// Direction selects which side of the origin a window is taken from.
type Direction int

const (
	// Later walks toward later dates, starting at or after the origin.
	Later Direction = iota
	// Earlier walks toward earlier dates, ending at or before the origin.
	Earlier
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Later:
		return "later"
	case Earlier:
		return "earlier"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Extract returns up to count consecutive valid observations from the
// series, taken in the given direction relative to origin and inclusive of
// it. Missing values are dropped first, so the window is contiguous in
// valid-data terms even when the calendar has gaps. When no valid point
// exists in the required relation to origin the result is an empty series,
// which is not an error; callers must handle it. The series must be sorted
// by date; an unknown direction is a fatal argument error.
func Extract(s Series, origin time.Time, count int, dir Direction) (Series, error) {
	valid := s.DropMissing()

	if count <= 0 {
		return Series{Name: s.Name}, nil
	}

	switch dir {
	case Later:
		start := searchAtOrAfter(valid.Points, origin)
		if start == len(valid.Points) {
			return Series{Name: s.Name}, nil
		}
		end := start + count
		if end > len(valid.Points) {
			end = len(valid.Points)
		}
		return Series{Name: s.Name, Points: valid.Points[start:end]}, nil

	case Earlier:
		end := searchAtOrBefore(valid.Points, origin)
		if end < 0 {
			return Series{Name: s.Name}, nil
		}
		start := end + 1 - count
		// A negative start would underflow; pin it to the first point.
		if start < 0 {
			start = 0
		}
		return Series{Name: s.Name, Points: valid.Points[start : end+1]}, nil

	default:
		return Series{}, fmt.Errorf("invalid window direction %d", int(dir))
	}
}
