package meals

import "fmt"

const (
	// CycleSpan is the nominal length of the currently open cycle (14 days).
	CycleSpan int64 = 1209600
	// OpenCycleSpan bounds a historical cycle whose successor marker does not exist yet (30 days).
	OpenCycleSpan int64 = 2592000
	// FallbackEpoch anchors the window returned when no cycle has been marked.
	FallbackEpoch int64 = 1672000000
)

// Window is the half-open timestamp interval [Start, End).
type Window struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

func (w Window) Contains(ts int64) bool { return ts >= w.Start && ts < w.End }

func (w Window) Empty() bool { return w.End <= w.Start }

// Cycle is a resolved week number together with its window.
type Cycle struct {
	WeekNumber int    `json:"week_number"`
	Window     Window `json:"window"`
}

// FallbackCycle is returned by LatestCycle when no marker beyond the bootstrap cycle exists.
func FallbackCycle() Cycle {
	return Cycle{WeekNumber: 0, Window: Window{Start: FallbackEpoch, End: FallbackEpoch + CycleSpan}}
}

// LatestCycle resolves the open cycle from the newest start marker with week_number > 1.
// A nil marker yields FallbackCycle.
func LatestCycle(marker *Meal) Cycle {
	if marker == nil {
		return FallbackCycle()
	}
	return Cycle{
		WeekNumber: marker.WeekNumber,
		Window:     Window{Start: marker.Timestamp, End: marker.Timestamp + CycleSpan},
	}
}

// CycleFromMarkers resolves cycle n from the start markers numbered n or n+1,
// ordered newest first.
//
//	one marker  -> [ts, ts+30d)
//	two markers -> [older.ts, newer.ts)
//	none        -> CodeCycleNotFound
//	more        -> CodeIntegrityViolation
func CycleFromMarkers(n int, markers []*Meal) (Cycle, error) {
	const op = "meals.CycleFromMarkers"
	switch len(markers) {
	case 0:
		return Cycle{}, NewError(CodeCycleNotFound, op, fmt.Sprintf("no start marker for week %d", n), nil)
	case 1:
		ts := markers[0].Timestamp
		return Cycle{WeekNumber: n, Window: Window{Start: ts, End: ts + OpenCycleSpan}}, nil
	case 2:
		newer, older := markers[0], markers[1]
		if older.Timestamp > newer.Timestamp {
			newer, older = older, newer
		}
		return Cycle{WeekNumber: n, Window: Window{Start: older.Timestamp, End: newer.Timestamp}}, nil
	default:
		return Cycle{}, NewError(CodeIntegrityViolation, op,
			fmt.Sprintf("found %d start markers for weeks %d and %d, expected at most 2", len(markers), n, n+1), nil)
	}
}
