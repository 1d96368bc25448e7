package timeline

import (
	"errors"
	"testing"
	"time"
)

func TestFormatRule(t *testing.T) {
	tests := []struct {
		rule Rule
		want string
	}{
		{Daily{At: TimeOfDay{Hour: 2, Minute: 30}}, "FREQ=DAILY;BYHOUR=2;BYMINUTE=30"},
		{Weekly{At: midnight, Day: Monday}, "FREQ=WEEKLY;BYDAY=MO;BYHOUR=0;BYMINUTE=0"},
		{Monthly{At: midnight, Day: 1}, "FREQ=MONTHLY;BYMONTHDAY=1;BYHOUR=0;BYMINUTE=0"},
		{Yearly{At: midnight, Day: 1, Month: time.January}, "FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=1;BYHOUR=0;BYMINUTE=0"},
	}

	for _, tt := range tests {
		t.Run(string(tt.rule.Frequency()), func(t *testing.T) {
			if got := FormatRule(tt.rule); got != tt.want {
				t.Errorf("FormatRule() = %q, want %q", got, tt.want)
			}
			if parsed := mustParseRule(t, tt.want); !Equal(parsed, tt.rule) {
				t.Errorf("ParseRule(%q) = %#v, want %#v", tt.want, parsed, tt.rule)
			}
		})
	}
}

func TestParseRule(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Rule
		wantErr bool
	}{
		{
			name:  "any part order",
			input: "BYMINUTE=15;BYHOUR=3;FREQ=WEEKLY;BYDAY=FR",
			want:  Weekly{At: TimeOfDay{Hour: 3, Minute: 15}, Day: Friday},
		},
		{
			name:  "rrule prefix and lower case",
			input: "RRULE:freq=daily;byhour=0;byminute=0",
			want:  Daily{At: midnight},
		},
		{
			name:  "trailing separator",
			input: "FREQ=MONTHLY;BYMONTHDAY=15;BYHOUR=12;BYMINUTE=0;",
			want:  Monthly{At: TimeOfDay{Hour: 12}, Day: 15},
		},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown frequency", input: "FREQ=HOURLY;BYHOUR=0;BYMINUTE=0", wantErr: true},
		{name: "missing minute", input: "FREQ=DAILY;BYHOUR=0", wantErr: true},
		{name: "daily with day", input: "FREQ=DAILY;BYDAY=MO;BYHOUR=0;BYMINUTE=0", wantErr: true},
		{name: "weekly with month day", input: "FREQ=WEEKLY;BYDAY=MO;BYMONTHDAY=1;BYHOUR=0;BYMINUTE=0", wantErr: true},
		{name: "monthly with month", input: "FREQ=MONTHLY;BYMONTHDAY=1;BYMONTH=1;BYHOUR=0;BYMINUTE=0", wantErr: true},
		{name: "yearly missing month", input: "FREQ=YEARLY;BYMONTHDAY=1;BYHOUR=0;BYMINUTE=0", wantErr: true},
		{name: "multiple values", input: "FREQ=DAILY;BYHOUR=0,12;BYMINUTE=0", wantErr: true},
		{name: "multiple days", input: "FREQ=WEEKLY;BYDAY=MO,TU;BYHOUR=0;BYMINUTE=0", wantErr: true},
		{name: "duplicate part", input: "FREQ=DAILY;BYHOUR=0;BYHOUR=1;BYMINUTE=0", wantErr: true},
		{name: "malformed part", input: "FREQ=DAILY;BYHOUR;BYMINUTE=0", wantErr: true},
		{name: "not a number", input: "FREQ=DAILY;BYHOUR=x;BYMINUTE=0", wantErr: true},
		{name: "out of range", input: "FREQ=DAILY;BYHOUR=24;BYMINUTE=0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRule(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRule(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRule) {
					t.Errorf("ParseRule(%q) error = %v, want ErrInvalidRule", tt.input, err)
				}
				return
			}
			if !Equal(got, tt.want) {
				t.Errorf("ParseRule(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func mustParseRule(t *testing.T, s string) Rule {
	t.Helper()
	r, err := ParseRule(s)
	if err != nil {
		t.Fatalf("ParseRule(%q) error = %v", s, err)
	}
	return r
}
