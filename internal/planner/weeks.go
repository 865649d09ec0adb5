// Package planner computes the sliding window of calendar weeks the meal
// plan operates on. All week math uses ISO-8601 numbering, so the year of a
// week may differ from the calendar year around New Year.
package planner

import (
	"fmt"
	"time"

	"github.com/starford/gourmet/internal/models"
)

// MaxDishesPerWeek is the advisory capacity of a weekly plan. The storage
// layer does not enforce it.
const MaxDishesPerWeek = 5

// RelevantWeeks returns the planning window for today: next week (only from
// Friday on, when the coming week starts to matter), this week, last week,
// and the week before last, in that order.
func RelevantWeeks(today time.Time) []models.CalendarWeek {
	weeks := make([]models.CalendarWeek, 0, 4)

	if weekendApproaching(today) {
		y, w := today.AddDate(0, 0, 7).ISOWeek()
		weeks = append(weeks, models.CalendarWeek{
			Week: w, Year: y, Label: "Nächste Woche", IsNext: true,
		})
	}

	y, w := today.ISOWeek()
	weeks = append(weeks, models.CalendarWeek{
		Week: w, Year: y, Label: "Diese Woche", IsCurrent: true,
	})

	y, w = today.AddDate(0, 0, -7).ISOWeek()
	weeks = append(weeks, models.CalendarWeek{
		Week: w, Year: y, Label: "Letzte Woche", IsPast: true,
	})

	y, w = today.AddDate(0, 0, -14).ISOWeek()
	weeks = append(weeks, models.CalendarWeek{
		Week: w, Year: y, Label: fmt.Sprintf("KW %d", w), IsPast: true,
	})

	return weeks
}

// TargetWeek picks the week a quick-added dish lands in: next week from
// Friday on, otherwise the current week.
func TargetWeek(today time.Time) (year, week int) {
	if weekendApproaching(today) {
		return today.AddDate(0, 0, 7).ISOWeek()
	}
	return today.ISOWeek()
}

// IsWeekFull reports whether a plan reached the advisory dish cap.
func IsWeekFull(plan models.WeeklyPlan) bool {
	return len(plan.DishIDs) >= MaxDishesPerWeek
}

func weekendApproaching(today time.Time) bool {
	switch today.Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
		return true
	}
	return false
}
