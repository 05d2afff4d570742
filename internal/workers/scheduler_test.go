package workers

import (
	"testing"
	"time"
)

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		name string
		expr string
		ok   bool
	}{
		{"empty disables", "", false},
		{"nightly", "0 3 * * *", true},
		{"every five minutes", "*/5 * * * *", true},
		{"six fields rejected", "0 0 3 * * *", false},
		{"garbage rejected", "whenever", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := parseSchedule(tt.expr)
			if (sched != nil) != tt.ok {
				t.Errorf("parseSchedule(%q) = %v, want ok=%v", tt.expr, sched, tt.ok)
			}
		})
	}
}

func TestParseScheduleNextFire(t *testing.T) {
	sched := parseSchedule("0 3 * * *")
	if sched == nil {
		t.Fatal("parseSchedule returned nil")
	}

	// Cron specs without an explicit TZ evaluate in local time
	from := time.Date(2026, 1, 10, 12, 0, 0, 0, time.Local)
	next := sched.Next(from)
	want := time.Date(2026, 1, 11, 3, 0, 0, 0, time.Local)
	if !next.Equal(want) {
		t.Errorf("Next(%v) = %v, want %v", from, next, want)
	}
}
