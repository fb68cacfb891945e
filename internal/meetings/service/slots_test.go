package service

import (
	"reflect"
	"testing"
	"time"
)

func date(t *testing.T, y int, m time.Month, d, h, min int) time.Time {
	t.Helper()
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestTimeLabelHourIsUnpadded(t *testing.T) {
	if got := timeLabel(9, 0); got != "9:00" {
		t.Fatalf("timeLabel(9, 0) = %q, want %q", got, "9:00")
	}
	if got := timeLabel(18, 30); got != "18:30" {
		t.Fatalf("timeLabel(18, 30) = %q, want %q", got, "18:30")
	}
}

func TestGridTodayStartsAtMinuteFloor(t *testing.T) {
	// 10:40 floors to minute 30, and the floor applies to every hour of the
	// remaining day, so only the :30 label appears per hour, up to 18:30.
	now := date(t, 2026, time.March, 10, 10, 40)
	grid := buildGrid(now)

	want := []string{"10:30", "11:30", "12:30", "13:30", "14:30", "15:30", "16:30", "17:30", "18:30"}
	if got := grid[10]; !reflect.DeepEqual(got, want) {
		t.Fatalf("today labels = %v, want %v", got, want)
	}
}

func TestGridTodayIncludesEighteenThirty(t *testing.T) {
	now := date(t, 2026, time.March, 10, 10, 10)
	grid := buildGrid(now)

	today := grid[10]
	if len(today) != 18 {
		t.Fatalf("today has %d labels, want 18: %v", len(today), today)
	}
	if today[0] != "10:00" {
		t.Fatalf("first label = %q, want %q", today[0], "10:00")
	}
	if today[len(today)-1] != "18:30" {
		t.Fatalf("last label = %q, want %q", today[len(today)-1], "18:30")
	}
}

func TestGridFutureDaysSkipEighteenThirty(t *testing.T) {
	now := date(t, 2026, time.March, 10, 10, 10)
	grid := buildGrid(now)

	tomorrow := grid[11]
	if len(tomorrow) != 21 {
		t.Fatalf("tomorrow has %d labels, want 21: %v", len(tomorrow), tomorrow)
	}
	if tomorrow[0] != "8:00" {
		t.Fatalf("first label = %q, want %q", tomorrow[0], "8:00")
	}
	if tomorrow[len(tomorrow)-1] != "18:00" {
		t.Fatalf("last label = %q, want %q", tomorrow[len(tomorrow)-1], "18:00")
	}
	for _, l := range tomorrow {
		if l == "18:30" {
			t.Fatalf("future day lists 18:30: %v", tomorrow)
		}
	}
}

func TestGridTodayVisibilityBoundaries(t *testing.T) {
	cases := []struct {
		hour      int
		wantToday bool
		wantDays  int
	}{
		{7, false, 7},
		{8, false, 7},
		{9, true, 7},
		{17, true, 7},
		{18, false, 7},
		{20, false, 7},
	}

	for _, tc := range cases {
		now := date(t, 2026, time.March, 10, tc.hour, 0)
		grid := buildGrid(now)

		_, hasToday := grid[10]
		if hasToday != tc.wantToday {
			t.Fatalf("hour %d: today shown = %v, want %v", tc.hour, hasToday, tc.wantToday)
		}
		if len(grid) != tc.wantDays {
			t.Fatalf("hour %d: grid has %d days, want %d", tc.hour, len(grid), tc.wantDays)
		}
	}
}

func TestGridDayKeysCrossMonthBoundary(t *testing.T) {
	now := date(t, 2026, time.March, 30, 12, 0)
	grid := buildGrid(now)

	for _, day := range []int{30, 31, 1, 2, 3, 4, 5} {
		if _, ok := grid[day]; !ok {
			t.Fatalf("grid missing day %d: %v", day, grid)
		}
	}
}

func TestFreeDatesRemovesExactLabelOnly(t *testing.T) {
	now := date(t, 2026, time.March, 10, 10, 10)
	booked := []time.Time{date(t, 2026, time.March, 10, 11, 0)}

	dates := freeDatesForWeek(now, booked, time.UTC)

	for _, l := range dates[10] {
		if l == "11:00" {
			t.Fatalf("booked label 11:00 still listed: %v", dates[10])
		}
	}
	found := false
	for _, l := range dates[10] {
		if l == "11:30" {
			found = true
		}
	}
	if !found {
		t.Fatalf("adjacent label 11:30 was removed: %v", dates[10])
	}
}

func TestFreeDatesRemovesFirstOccurrenceOncePerBooking(t *testing.T) {
	now := date(t, 2026, time.March, 10, 7, 0)
	booked := []time.Time{
		date(t, 2026, time.March, 11, 9, 0),
		date(t, 2026, time.March, 11, 9, 0),
	}

	dates := freeDatesForWeek(now, booked, time.UTC)

	for _, l := range dates[11] {
		if l == "9:00" {
			t.Fatalf("label 9:00 still listed after two bookings: %v", dates[11])
		}
	}
	if len(dates[11]) != 20 {
		t.Fatalf("day 11 has %d labels, want 20", len(dates[11]))
	}
}

func TestFreeDatesIgnoresBookingsOutsideWeek(t *testing.T) {
	now := date(t, 2026, time.March, 10, 10, 10)
	booked := []time.Time{date(t, 2026, time.March, 30, 9, 0)}

	dates := freeDatesForWeek(now, booked, time.UTC)

	if len(dates) != 7 {
		t.Fatalf("grid has %d days, want 7", len(dates))
	}
	if len(dates[11]) != 21 {
		t.Fatalf("tomorrow has %d labels, want 21", len(dates[11]))
	}
}
