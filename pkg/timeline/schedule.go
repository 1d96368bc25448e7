package timeline

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// CronSpec renders the rule as a standard five-field cron expression
// (minute hour day-of-month month day-of-week).
func CronSpec(r Rule) string {
	at := r.Time()
	switch x := r.(type) {
	case Weekly:
		return fmt.Sprintf("%d %d * * %d", at.Minute, at.Hour, x.Day.cronDay())
	case Monthly:
		return fmt.Sprintf("%d %d %d * *", at.Minute, at.Hour, x.Day)
	case Yearly:
		return fmt.Sprintf("%d %d %d %d *", at.Minute, at.Hour, x.Day, int(x.Month))
	default:
		return fmt.Sprintf("%d %d * * *", at.Minute, at.Hour)
	}
}

// Schedule returns a cron schedule that fires whenever the rule does, in the
// local time zone.
func Schedule(r Rule) (cron.Schedule, error) {
	return ScheduleIn(r, time.Local)
}

// ScheduleIn is like Schedule but interprets the rule's time of day in loc.
func ScheduleIn(r Rule, loc *time.Location) (cron.Schedule, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}
	sched, err := cron.ParseStandard("CRON_TZ=" + loc.String() + " " + CronSpec(r))
	if err != nil {
		return nil, NewRuleError(FormatRule(r), err)
	}
	return sched, nil
}

// NextFire returns the first time after t at which the rule fires, in t's
// location. A zero time means the rule can never fire (e.g. February 31st).
func NextFire(r Rule, t time.Time) (time.Time, error) {
	sched, err := ScheduleIn(r, t.Location())
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(t), nil
}

var dayNames = map[Weekday]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
	Sunday:    "Sunday",
}

// DisplayName returns the English day name, or the abbreviation itself when
// it is not a known weekday.
func (d Weekday) DisplayName() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return string(d)
}

// Describe renders a rule for humans, e.g. "weekly on Monday at 00:00".
func Describe(r Rule) string {
	at := r.Time()
	switch x := r.(type) {
	case Weekly:
		return fmt.Sprintf("weekly on %s at %s", x.Day.DisplayName(), at)
	case Monthly:
		return fmt.Sprintf("monthly on day %d at %s", x.Day, at)
	case Yearly:
		return fmt.Sprintf("yearly on %s %d at %s", x.Month, x.Day, at)
	default:
		return fmt.Sprintf("daily at %s", at)
	}
}
