package service

import (
	"fmt"
	"time"
)

// freeDatesForWeek builds the rolling availability view for a city: a map
// from day-of-month to the ordered open half-hour labels, minus the exact
// labels of the booked meetings.
//
// Today appears only when the current hour is strictly inside (8, 18). Its
// grid starts at the current hour and runs to 18 inclusive, with the minute
// floor (0 or 30) applied to every hour, so a label of 18:30 can appear.
// Future days run 8:00 through 18:00 and never list 18:30. Booked meetings
// remove only their exact half-hour label; no window subtraction happens
// here.
func freeDatesForWeek(now time.Time, booked []time.Time, loc *time.Location) map[int][]string {
	local := now.In(loc)
	dates := buildGrid(local)

	for _, b := range booked {
		start := b.In(loc)
		day := start.Day()
		label := timeLabel(start.Hour(), start.Minute())

		// Meetings outside the visible week have no grid entry to prune.
		if labels, ok := dates[day]; ok {
			dates[day] = removeLabel(labels, label)
		}
	}

	return dates
}

func buildGrid(now time.Time) map[int][]string {
	hour := now.Hour()
	minute := 0
	if now.Minute() >= 30 {
		minute = 30
	}

	dates := make(map[int][]string)

	todayShown := 8 < hour && hour < 18
	if todayShown {
		var today []string
		for h := hour; h <= 18; h++ {
			for m := minute; m <= 30; m += 30 {
				today = append(today, timeLabel(h, m))
			}
		}
		dates[now.Day()] = today
	}

	days := 7
	if todayShown {
		days = 6
	}
	for i := 1; i <= days; i++ {
		var day []string
		for h := 8; h <= 18; h++ {
			for m := 0; m <= 30; m += 30 {
				if h == 18 && m == 30 {
					continue
				}
				day = append(day, timeLabel(h, m))
			}
		}
		dates[now.AddDate(0, 0, i).Day()] = day
	}

	return dates
}

// timeLabel renders "H:MM" with an unpadded hour.
func timeLabel(h, m int) string {
	return fmt.Sprintf("%d:%02d", h, m)
}

func removeLabel(labels []string, label string) []string {
	for i, l := range labels {
		if l == label {
			return append(labels[:i], labels[i+1:]...)
		}
	}
	return labels
}
