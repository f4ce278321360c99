package dates

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNominalYearDiff(t *testing.T) {
	tests := []struct {
		name   string
		first  time.Time
		second time.Time
		want   int
	}{
		{
			name:   "same date",
			first:  date(2000, time.May, 10),
			second: date(2000, time.May, 10),
			want:   0,
		},
		{
			name:   "exactly one year",
			first:  date(2000, time.May, 10),
			second: date(2001, time.May, 10),
			want:   1,
		},
		{
			name:   "day before anniversary",
			first:  date(2000, time.May, 10),
			second: date(2001, time.May, 9),
			want:   0,
		},
		{
			name:   "month before anniversary",
			first:  date(2000, time.May, 10),
			second: date(2001, time.April, 30),
			want:   0,
		},
		{
			name:   "month after anniversary",
			first:  date(2000, time.May, 10),
			second: date(2001, time.June, 1),
			want:   1,
		},
		{
			name:   "seventeen going on eighteen",
			first:  date(2006, time.September, 1),
			second: date(2024, time.August, 31),
			want:   17,
		},
		{
			name:   "eighteenth birthday",
			first:  date(2006, time.September, 1),
			second: date(2024, time.September, 1),
			want:   18,
		},
		{
			name:   "second before first",
			first:  date(2010, time.January, 1),
			second: date(2008, time.June, 15),
			want:   -2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NominalYearDiff(tt.first, tt.second)
			if got != tt.want {
				t.Errorf("NominalYearDiff(%v, %v) = %d, want %d",
					tt.first, tt.second, got, tt.want)
			}
		})
	}
}

func TestAgeAt(t *testing.T) {
	birthday := date(2010, time.March, 2)
	if got := AgeAt(birthday, date(2024, time.March, 1)); got != 13 {
		t.Errorf("AgeAt day before birthday = %d, want 13", got)
	}
	if got := AgeAt(birthday, date(2024, time.March, 2)); got != 14 {
		t.Errorf("AgeAt on birthday = %d, want 14", got)
	}
}
