package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	MaxSessionDates = 4

	DateLayout = "2006-01-02"

	morningStart   = "09:00"
	morningEnd     = "13:00"
	afternoonStart = "14:00"
	afternoonEnd   = "18:00"

	// a session ending at or before this time leaves room for an afternoon slot on the same day
	afternoonCutoff = 13*60 + 30
)

var ErrInvalidSessionDates = errors.New("session dates have no valid date")

// SessionField names the editable fields of a SessionDate.
type SessionField string

const (
	FieldDate      SessionField = "date"
	FieldStart     SessionField = "start"
	FieldEnd       SessionField = "end"
	FieldTrainer   SessionField = "trainer_id"
	FieldCoTrainer SessionField = "co_trainer_id"
)

// DefaultSessionDate is the morning slot on the day of now.
func DefaultSessionDate(now time.Time, trainerID, coTrainerID ID) SessionDate {
	return SessionDate{
		Date:        now.Format(DateLayout),
		Start:       morningStart,
		End:         morningEnd,
		TrainerID:   trainerID,
		CoTrainerID: coTrainerID,
	}
}

// NextSessionDate proposes the slot following prev: the same afternoon when prev ends early enough,
// the next working day's morning otherwise. Trainers are carried over.
func NextSessionDate(prev SessionDate, now time.Time) SessionDate {
	next := SessionDate{
		Start:       morningStart,
		End:         morningEnd,
		TrainerID:   prev.TrainerID,
		CoTrainerID: prev.CoTrainerID,
	}

	day, err := time.Parse(DateLayout, prev.Date)
	if err != nil {
		next.Date = now.Format(DateLayout)
		return next
	}

	if end, ok := ClockMinutes(prev.End); ok && end <= afternoonCutoff {
		next.Date = prev.Date
		next.Start = afternoonStart
		next.End = afternoonEnd
		return next
	}

	day = day.AddDate(0, 0, 1)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	next.Date = day.Format(DateLayout)
	return next
}

// ClockMinutes parses HH:MM (seconds are ignored) into minutes after midnight.
func ClockMinutes(hhmm string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(hhmm), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// AddDate appends a session derived from the last one (or the default slot when there is none).
// It reports false and leaves the form untouched once MaxSessionDates is reached.
func (f FormState) AddDate(now time.Time) (FormState, bool) {
	if len(f.Dates) >= MaxSessionDates {
		return f, false
	}
	var sd SessionDate
	if n := len(f.Dates); n > 0 {
		sd = NextSessionDate(f.Dates[n-1], now)
	} else {
		sd = DefaultSessionDate(now, f.TrainerID, f.CoTrainerID)
	}
	out := f.Clone()
	out.Dates = append(out.Dates, sd)
	return out, true
}

// RemoveDate drops the session at index i; out of range indices are ignored.
func (f FormState) RemoveDate(i int) FormState {
	out := f.Clone()
	if i < 0 || i >= len(out.Dates) {
		return out
	}
	out.Dates = append(out.Dates[:i], out.Dates[i+1:]...)
	return out
}

// UpdateDate sets one field of the session at index i.
func (f FormState) UpdateDate(i int, field SessionField, value string) FormState {
	out := f.Clone()
	if i < 0 || i >= len(out.Dates) {
		return out
	}
	sd := &out.Dates[i]
	switch field {
	case FieldDate:
		sd.Date = value
	case FieldStart:
		sd.Start = value
	case FieldEnd:
		sd.End = value
	case FieldTrainer:
		sd.TrainerID = ID(strings.TrimSpace(value))
	case FieldCoTrainer:
		sd.CoTrainerID = ID(strings.TrimSpace(value))
	}
	return out
}

// Clone returns a copy that shares nothing with f.
func (f FormState) Clone() FormState {
	out := f
	out.Dates = make([]SessionDate, len(f.Dates), len(f.Dates)+1)
	copy(out.Dates, f.Dates)
	return out
}

// Span returns the absolute start and end of a list of sessions: the earliest calendar date combined
// with its start time and the latest calendar date combined with its end time. When several sessions
// share the boundary date, the earliest start and the latest end win. Sessions with an unparsable
// date or time are skipped.
func Span(dates []SessionDate, loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.UTC
	}
	var (
		first, last       string
		firstMin, lastMin int
	)
	for _, sd := range dates {
		if _, err := time.Parse(DateLayout, sd.Date); err != nil {
			continue
		}
		s, okStart := ClockMinutes(sd.Start)
		e, okEnd := ClockMinutes(sd.End)
		if !okStart || !okEnd {
			continue
		}
		if first == "" || sd.Date < first || (sd.Date == first && s < firstMin) {
			first, firstMin = sd.Date, s
		}
		if last == "" || sd.Date > last || (sd.Date == last && e > lastMin) {
			last, lastMin = sd.Date, e
		}
	}
	if first == "" {
		return time.Time{}, time.Time{}, ErrInvalidSessionDates
	}
	return atMinutes(first, firstMin, loc), atMinutes(last, lastMin, loc), nil
}

func atMinutes(date string, minutes int, loc *time.Location) time.Time {
	d, _ := time.ParseInLocation(DateLayout, date, loc)
	return time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, loc)
}
