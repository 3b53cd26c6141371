package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

func TestInRange(t *testing.T) {
	tests := []struct {
		name   string
		target types.TimeString
		start  types.TimeString
		end    types.TimeString
		want   bool
	}{
		{"inside", "10:00", "09:00", "21:00", true},
		{"start boundary", "09:00", "09:00", "21:00", true},
		{"end boundary", "21:00", "09:00", "21:00", true},
		{"before", "08:59", "09:00", "21:00", false},
		{"after", "21:01", "09:00", "21:00", false},
		{"wrap late evening", "23:00", "22:00", "06:00", true},
		{"wrap early morning", "05:30", "22:00", "06:00", true},
		{"wrap midday excluded", "12:00", "22:00", "06:00", false},
		{"single point", "12:00", "12:00", "12:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InRange(tt.target, tt.start, tt.end))
		})
	}
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	at := func(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }

	tests := []struct {
		name                       string
		startA, endA, startB, endB time.Time
		want                       bool
	}{
		{"identical", at(0), at(60), at(0), at(60), true},
		{"partial", at(0), at(60), at(30), at(90), true},
		{"contained", at(0), at(120), at(30), at(60), true},
		{"touching after", at(0), at(60), at(60), at(120), false},
		{"touching before", at(60), at(120), at(0), at(60), false},
		{"disjoint", at(0), at(30), at(90), at(120), false},
		{"different day same time", at(0), at(60), at(24 * 60), at(24*60 + 60), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.startA, tt.endA, tt.startB, tt.endB))
			assert.Equal(t, tt.want, Overlaps(tt.startB, tt.endB, tt.startA, tt.endA), "overlap must be symmetric")
		})
	}
}

func TestTimeOfDayOverlaps(t *testing.T) {
	assert.True(t, TimeOfDayOverlaps("13:30", "14:15", "13:00", "14:00"))
	assert.False(t, TimeOfDayOverlaps("09:00", "09:45", "13:00", "14:00"))
	assert.False(t, TimeOfDayOverlaps("12:00", "13:00", "13:00", "14:00"))
	assert.False(t, TimeOfDayOverlaps("14:00", "15:00", "13:00", "14:00"))
	assert.True(t, TimeOfDayOverlaps("12:30", "15:00", "13:00", "14:00"))
}
