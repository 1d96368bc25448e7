package timeline

import "testing"

func TestToSeconds(t *testing.T) {
	tests := []struct {
		name      string
		magnitude float64
		unit      DurationUnit
		want      int64
	}{
		{"one hour", 1, Hour, 3600},
		{"half hour", 0.5, Hour, 1800},
		{"one day", 1, Day, 86400},
		{"two weeks", 2, Week, 1209600},
		{"one month is 31 days", 1, Month, 31 * 86400},
		{"one year is 366 days", 1, Year, 366 * 86400},
		{"zero", 0, Week, 0},
		{"negative is not rejected", -1, Day, -86400},
		{"fractional day", 0.7, Day, 60480},
		{"fractional week", 1.1, Week, 665280},
		{"fractional hour rounds to nearest second", 1.0 / 3, Hour, 1200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToSeconds(tt.magnitude, tt.unit); got != tt.want {
				t.Errorf("ToSeconds(%v, %v) = %d, want %d", tt.magnitude, tt.unit, got, tt.want)
			}
		})
	}
}

func TestFromSeconds(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int64
		wantMag  float64
		wantUnit DurationUnit
	}{
		{"one year", 366 * 86400, 1, Year},
		{"five years", 5 * 366 * 86400, 5, Year},
		{"one month", 31 * 86400, 1, Month},
		{"one week", 7 * 86400, 1, Week},
		{"one day", 86400, 1, Day},
		{"365 days is not a year", 31536000, 365, Day},
		{"thirty days", 2592000, 30, Day},
		{"180 days", 15552000, 180, Day},
		{"one hour", 3600, 1, Hour},
		{"ninety minutes", 5400, 1.5, Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mag, unit := FromSeconds(tt.seconds)
			if mag != tt.wantMag || unit != tt.wantUnit {
				t.Errorf("FromSeconds(%d) = (%v, %v), want (%v, %v)",
					tt.seconds, mag, unit, tt.wantMag, tt.wantUnit)
			}
		})
	}
}

func TestFromSeconds_RoundTrip(t *testing.T) {
	units := []DurationUnit{Hour, Day, Week, Month, Year}

	for _, unit := range units {
		for m := 1; m <= 60; m++ {
			secs := ToSeconds(float64(m), unit)
			mag, got := FromSeconds(secs)
			if back := ToSeconds(mag, got); back != secs {
				t.Errorf("round trip %d %v: FromSeconds(%d) = (%v, %v), back to %d",
					m, unit, secs, mag, got, back)
			}
		}
	}
}

func TestFromSeconds_RoundTripHourFallback(t *testing.T) {
	for _, secs := range []int64{1, 115, 3599, 3601, 86399, 90061, 1234567} {
		mag, unit := FromSeconds(secs)
		if unit != Hour {
			t.Fatalf("FromSeconds(%d) unit = %v, want hours", secs, unit)
		}
		if back := ToSeconds(mag, unit); back != secs {
			t.Errorf("FromSeconds(%d) = %v hours, back to %d", secs, mag, back)
		}
	}
}

func TestFromSeconds_PrefersLargestUnit(t *testing.T) {
	// 14 days divides by week, so week wins over day.
	mag, unit := FromSeconds(ToSeconds(14, Day))
	if unit != Week || mag != 2 {
		t.Errorf("FromSeconds(14 days) = (%v, %v), want (2, weeks)", mag, unit)
	}

	// 62 days is two 31-day months.
	mag, unit = FromSeconds(ToSeconds(62, Day))
	if unit != Month || mag != 2 {
		t.Errorf("FromSeconds(62 days) = (%v, %v), want (2, months)", mag, unit)
	}
}

func TestParseDurationUnit(t *testing.T) {
	tests := []struct {
		input   string
		want    DurationUnit
		wantErr bool
	}{
		{"DAYS", Day, false},
		{"weeks", Week, false},
		{"Month", Month, false},
		{"years", Year, false},
		{"hour", Hour, false},
		{"h", Hour, false},
		{" d ", Day, false},
		{"fortnight", Hour, true},
		{"", Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDurationUnit(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDurationUnit(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseDurationUnit(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatRetention(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{604800, "1 week"},
		{2592000, "30 days"},
		{158112000, "5 years"},
		{5400, "1.5 hours"},
	}

	for _, tt := range tests {
		if got := FormatRetention(tt.seconds); got != tt.want {
			t.Errorf("FormatRetention(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
