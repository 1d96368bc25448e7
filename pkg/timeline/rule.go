package timeline

import (
	"fmt"
	"time"
)

// Frequency is how often a recurrence rule fires.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// Frequencies lists every frequency from most to least frequent.
var Frequencies = []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly}

// Weekday is a two-letter RRULE day abbreviation.
type Weekday string

const (
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
	Sunday    Weekday = "SU"
)

var weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// TimeOfDay is the hour and minute at which a rule fires.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String renders the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) validate() error {
	if t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("minute %d out of range [0,59]", t.Minute)
	}
	if t.Hour < 0 || t.Hour > 23 {
		return fmt.Errorf("hour %d out of range [0,23]", t.Hour)
	}
	return nil
}

// Rule describes when a snapshot fires. The concrete type is one of Daily,
// Weekly, Monthly or Yearly.
type Rule interface {
	// Frequency returns the rule's frequency.
	Frequency() Frequency

	// Time returns the time of day the rule fires at.
	Time() TimeOfDay

	isRule()
}

// Daily fires every day at a fixed time.
type Daily struct {
	At TimeOfDay
}

// Weekly fires once a week on Day.
type Weekly struct {
	At  TimeOfDay
	Day Weekday
}

// Monthly fires once a month on day-of-month Day.
type Monthly struct {
	At  TimeOfDay
	Day int
}

// Yearly fires once a year on Day of Month.
type Yearly struct {
	At    TimeOfDay
	Day   int
	Month time.Month
}

func (Daily) Frequency() Frequency   { return FrequencyDaily }
func (Weekly) Frequency() Frequency  { return FrequencyWeekly }
func (Monthly) Frequency() Frequency { return FrequencyMonthly }
func (Yearly) Frequency() Frequency  { return FrequencyYearly }

func (r Daily) Time() TimeOfDay   { return r.At }
func (r Weekly) Time() TimeOfDay  { return r.At }
func (r Monthly) Time() TimeOfDay { return r.At }
func (r Yearly) Time() TimeOfDay  { return r.At }

func (Daily) isRule()   {}
func (Weekly) isRule()  {}
func (Monthly) isRule() {}
func (Yearly) isRule()  {}

// String returns the RRULE text of the rule.
func (r Daily) String() string   { return FormatRule(r) }
func (r Weekly) String() string  { return FormatRule(r) }
func (r Monthly) String() string { return FormatRule(r) }
func (r Yearly) String() string  { return FormatRule(r) }

// Equal reports whether a and b are the same variant with identical fields.
// No cross-frequency equivalence is attempted.
func Equal(a, b Rule) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Daily:
		y, ok := b.(Daily)
		return ok && x.At == y.At
	case Weekly:
		y, ok := b.(Weekly)
		return ok && x.At == y.At && x.Day == y.Day
	case Monthly:
		y, ok := b.(Monthly)
		return ok && x.At == y.At && x.Day == y.Day
	case Yearly:
		y, ok := b.(Yearly)
		return ok && x.At == y.At && x.Day == y.Day && x.Month == y.Month
	}
	return false
}

// Validate checks the ranges of every field on the rule.
func Validate(r Rule) error {
	if r == nil {
		return NewRuleError("", fmt.Errorf("rule is nil"))
	}
	if err := r.Time().validate(); err != nil {
		return NewRuleError(FormatRule(r), err)
	}
	var err error
	switch x := r.(type) {
	case Weekly:
		if !x.Day.Valid() {
			err = fmt.Errorf("unknown weekday %q", string(x.Day))
		}
	case Monthly:
		err = validateDayOfMonth(x.Day)
	case Yearly:
		err = validateDayOfMonth(x.Day)
		if err == nil && (x.Month < time.January || x.Month > time.December) {
			err = fmt.Errorf("month %d out of range [1,12]", int(x.Month))
		}
	}
	if err != nil {
		return NewRuleError(FormatRule(r), err)
	}
	return nil
}

func validateDayOfMonth(day int) error {
	if day < 1 || day > 31 {
		return fmt.Errorf("day of month %d out of range [1,31]", day)
	}
	return nil
}

// Valid reports whether d is one of MO..SU.
func (d Weekday) Valid() bool {
	for _, w := range weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// cronDay maps a weekday to cron's day-of-week number (Sunday = 0).
func (d Weekday) cronDay() int {
	for i, w := range weekdays {
		if d == w {
			return (i + 1) % 7
		}
	}
	return -1
}
