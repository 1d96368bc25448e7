package timeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DurationUnit is a human time unit used to express retention periods.
type DurationUnit int

const (
	Hour DurationUnit = iota
	Day
	Week
	Month
	Year
)

const (
	secondsPerHour  int64 = 60 * 60
	secondsPerDay   int64 = 24 * secondsPerHour
	secondsPerWeek  int64 = 7 * secondsPerDay
	secondsPerMonth int64 = 31 * secondsPerDay
	secondsPerYear  int64 = 366 * secondsPerDay
)

// largestFirst is the order FromSeconds tries units in. Hour is the fallback.
var largestFirst = []DurationUnit{Year, Month, Week, Day}

// SecondsPerUnit returns the fixed length of a unit in seconds.
// Months are 31 days and years are 366 days.
func SecondsPerUnit(u DurationUnit) int64 {
	switch u {
	case Day:
		return secondsPerDay
	case Week:
		return secondsPerWeek
	case Month:
		return secondsPerMonth
	case Year:
		return secondsPerYear
	default:
		return secondsPerHour
	}
}

// ToSeconds converts magnitude units into seconds, rounded to the nearest
// second. Non-positive magnitudes are not rejected; callers validate the
// result.
func ToSeconds(magnitude float64, unit DurationUnit) int64 {
	return int64(math.Round(magnitude * float64(SecondsPerUnit(unit))))
}

// FromSeconds expresses seconds in the largest unit that divides it exactly,
// falling back to fractional hours.
func FromSeconds(seconds int64) (float64, DurationUnit) {
	for _, u := range largestFirst {
		per := SecondsPerUnit(u)
		if seconds%per == 0 {
			return float64(seconds / per), u
		}
	}
	return float64(seconds) / float64(secondsPerHour), Hour
}

// String returns the plural lower-case unit name.
func (u DurationUnit) String() string {
	switch u {
	case Hour:
		return "hours"
	case Day:
		return "days"
	case Week:
		return "weeks"
	case Month:
		return "months"
	case Year:
		return "years"
	default:
		return fmt.Sprintf("DurationUnit(%d)", int(u))
	}
}

// ParseDurationUnit accepts unit names in singular or plural form, in any
// case, including the dashboard's upper-case names ("DAYS", "WEEKS").
func ParseDurationUnit(s string) (DurationUnit, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "hour", "h":
		return Hour, nil
	case "day", "d":
		return Day, nil
	case "week", "w":
		return Week, nil
	case "month":
		return Month, nil
	case "year", "y":
		return Year, nil
	}
	return Hour, fmt.Errorf("unknown duration unit %q", s)
}

// FormatRetention renders seconds as "<magnitude> <unit>", e.g. "2 weeks".
func FormatRetention(seconds int64) string {
	mag, unit := FromSeconds(seconds)
	name := unit.String()
	if mag == 1 {
		name = strings.TrimSuffix(name, "s")
	}
	return strconv.FormatFloat(mag, 'f', -1, 64) + " " + name
}
