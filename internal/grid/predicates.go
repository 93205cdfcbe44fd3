package grid

import "time"

// Range is the term of a comparison filter. Either bound may be nil. Bounds
// are float64 (or any Go number) or time.Time.
type Range struct {
	Start any
	End   any
}

func (r Range) IsEmpty() bool {
	return IsEmptyTerm(r.Start) && IsEmptyTerm(r.End)
}

// OneOf matches rows whose value is one of the selected choices. The term is
// a []string; rows with an empty value never match.
func OneOf(fieldID string) Predicate {
	return func(row Row, term any) bool {
		value := stringOf(row[fieldID])
		if value == "" {
			return false
		}
		choices, _ := term.([]string)
		for _, choice := range choices {
			if choice == value {
				return true
			}
		}
		return false
	}
}

// Between matches rows whose value lies within an inclusive Range. Date end
// bounds are extended to the last instant of their day.
func Between(fieldID string) Predicate {
	return func(row Row, term any) bool {
		var r Range
		switch t := term.(type) {
		case Range:
			r = t
		case *Range:
			if t == nil {
				return true
			}
			r = *t
		default:
			return false
		}
		value := row[fieldID]
		if ts, ok := value.(time.Time); ok {
			return timeWithin(ts, r)
		}
		f, ok := toFloat(value)
		if !ok {
			return false
		}
		if start, ok := toFloat(r.Start); ok && f < start {
			return false
		}
		if end, ok := toFloat(r.End); ok && f > end {
			return false
		}
		return true
	}
}

func timeWithin(ts time.Time, r Range) bool {
	if start, ok := r.Start.(time.Time); ok && !start.IsZero() && ts.Before(start) {
		return false
	}
	if end, ok := r.End.(time.Time); ok && !end.IsZero() && ts.After(EndOfDay(end)) {
		return false
	}
	return true
}

// EndOfDay returns the last nanosecond of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
