package internal

import "testing"

func TestTimePeriodForHour(t *testing.T) {
	tests := []struct {
		hour int
		want TimePeriod
	}{
		{0, PeriodLateNight},
		{6, PeriodLateNight},
		{7, PeriodMorning},
		{12, PeriodMorning},
		{13, PeriodAfternoon},
		{17, PeriodAfternoon},
		{18, PeriodEvening},
		{21, PeriodEvening},
		{22, PeriodNight},
		{23, PeriodNight},
	}

	for _, tt := range tests {
		if got := TimePeriodForHour(tt.hour); got != tt.want {
			t.Errorf("TimePeriodForHour(%d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestTimePeriods_CoverEveryBucket(t *testing.T) {
	seen := make(map[TimePeriod]bool)
	for h := 0; h < 24; h++ {
		seen[TimePeriodForHour(h)] = true
	}
	if len(seen) != len(TimePeriods) {
		t.Errorf("hours map to %d periods, TimePeriods lists %d", len(seen), len(TimePeriods))
	}
	for _, p := range TimePeriods {
		if !seen[p] {
			t.Errorf("period %q is never produced", p)
		}
	}
}
