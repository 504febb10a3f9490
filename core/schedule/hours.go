package schedule

import "math"

type HoursBalance int

const (
	HoursUnder HoursBalance = iota - 1
	HoursExact
	HoursOver
)

func (b HoursBalance) String() string {
	switch b {
	case HoursUnder:
		return "under"
	case HoursOver:
		return "over"
	default:
		return "exact"
	}
}

// TotalHours sums the length of every session in hours. Sessions ending before they start, or with
// unparsable times, count as zero.
func TotalHours(dates []SessionDate) float64 {
	var minutes int
	for _, sd := range dates {
		s, ok1 := ClockMinutes(sd.Start)
		e, ok2 := ClockMinutes(sd.End)
		if !ok1 || !ok2 || e <= s {
			continue
		}
		minutes += e - s
	}
	return round2(float64(minutes) / 60)
}

// HoursLeft is the course duration minus the scheduled hours; negative when over.
func HoursLeft(duration float64, dates []SessionDate) float64 {
	return round2(duration - TotalHours(dates))
}

func Balance(duration float64, dates []SessionDate) HoursBalance {
	switch left := HoursLeft(duration, dates); {
	case left > 0:
		return HoursUnder
	case left < 0:
		return HoursOver
	default:
		return HoursExact
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
