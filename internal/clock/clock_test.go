package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock(t *testing.T) {
	start := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	c := NewFixedClock(start)
	assert.Equal(t, start, c.Now())

	c.Add(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), c.Now())

	later := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)
	c.Set(later)
	assert.Equal(t, later, c.Now())
}

func TestBusiness(t *testing.T) {
	c := NewFixedClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	b := NewBusiness(c, -5*time.Hour)

	assert.Equal(t, time.Date(2024, 3, 1, 5, 0, 0, 0, time.UTC), b.Now())

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{name: "morning UTC is the same business day", now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "early UTC hours belong to the previous business day", now: time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC), want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{name: "exactly at the shifted midnight", now: time.Date(2024, 3, 1, 5, 0, 0, 0, time.UTC), want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "non UTC input is normalized", now: time.Date(2024, 3, 1, 23, 30, 0, 0, time.FixedZone("PET", -5*3600)), want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.Set(tt.now)
			assert.Equal(t, tt.want, b.DayOf(c.Now()))
		})
	}
}
