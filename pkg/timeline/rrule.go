package timeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RRULE part names.
const (
	partFreq       = "FREQ"
	partByMinute   = "BYMINUTE"
	partByHour     = "BYHOUR"
	partByDay      = "BYDAY"
	partByMonthDay = "BYMONTHDAY"
	partByMonth    = "BYMONTH"
)

// allowedParts lists the optional parts each frequency requires, besides
// BYHOUR and BYMINUTE which every frequency carries.
var allowedParts = map[Frequency][]string{
	FrequencyDaily:   nil,
	FrequencyWeekly:  {partByDay},
	FrequencyMonthly: {partByMonthDay},
	FrequencyYearly:  {partByMonthDay, partByMonth},
}

// FormatRule renders a rule as RRULE text, e.g.
// "FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=1;BYHOUR=0;BYMINUTE=0".
func FormatRule(r Rule) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(partFreq + "=" + string(r.Frequency()))
	switch x := r.(type) {
	case Weekly:
		fmt.Fprintf(&b, ";%s=%s", partByDay, x.Day)
	case Monthly:
		fmt.Fprintf(&b, ";%s=%d", partByMonthDay, x.Day)
	case Yearly:
		fmt.Fprintf(&b, ";%s=%d;%s=%d", partByMonth, int(x.Month), partByMonthDay, x.Day)
	}
	at := r.Time()
	fmt.Fprintf(&b, ";%s=%d;%s=%d", partByHour, at.Hour, partByMinute, at.Minute)
	return b.String()
}

// ParseRule parses RRULE text into a rule. Parts that do not belong to the
// frequency's shape are rejected, as are missing or repeated parts.
func ParseRule(s string) (Rule, error) {
	text := strings.TrimPrefix(strings.TrimSpace(s), "RRULE:")
	if text == "" {
		return nil, NewRuleError(s, fmt.Errorf("empty rule"))
	}

	parts := make(map[string]string)
	for _, field := range strings.Split(text, ";") {
		if field == "" {
			continue
		}
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return nil, NewRuleError(s, fmt.Errorf("malformed part %q", field))
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		if _, dup := parts[key]; dup {
			return nil, NewRuleError(s, fmt.Errorf("duplicate part %s", key))
		}
		parts[key] = strings.TrimSpace(value)
	}

	freq := Frequency(strings.ToUpper(parts[partFreq]))
	optional, known := allowedParts[freq]
	if !known {
		return nil, NewRuleError(s, fmt.Errorf("unsupported frequency %q", parts[partFreq]))
	}

	allowed := map[string]bool{partFreq: true, partByHour: true, partByMinute: true}
	for _, p := range optional {
		allowed[p] = true
	}
	for key := range parts {
		if !allowed[key] {
			return nil, NewRuleError(s, fmt.Errorf("part %s not allowed for %s", key, freq))
		}
	}
	for key := range allowed {
		if _, ok := parts[key]; !ok {
			return nil, NewRuleError(s, fmt.Errorf("missing part %s", key))
		}
	}

	hour, err := parseInt(parts, partByHour)
	if err != nil {
		return nil, NewRuleError(s, err)
	}
	minute, err := parseInt(parts, partByMinute)
	if err != nil {
		return nil, NewRuleError(s, err)
	}
	at := TimeOfDay{Hour: hour, Minute: minute}

	var rule Rule
	switch freq {
	case FrequencyDaily:
		rule = Daily{At: at}
	case FrequencyWeekly:
		rule = Weekly{At: at, Day: Weekday(strings.ToUpper(parts[partByDay]))}
	case FrequencyMonthly:
		day, err := parseInt(parts, partByMonthDay)
		if err != nil {
			return nil, NewRuleError(s, err)
		}
		rule = Monthly{At: at, Day: day}
	case FrequencyYearly:
		day, err := parseInt(parts, partByMonthDay)
		if err != nil {
			return nil, NewRuleError(s, err)
		}
		month, err := parseInt(parts, partByMonth)
		if err != nil {
			return nil, NewRuleError(s, err)
		}
		rule = Yearly{At: at, Day: day, Month: time.Month(month)}
	}

	if err := Validate(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func parseInt(parts map[string]string, key string) (int, error) {
	v := parts[key]
	if strings.Contains(v, ",") {
		return 0, fmt.Errorf("%s: multiple values are not supported", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
