package gourmet

import (
	"context"
	"fmt"

	"github.com/starford/gourmet/internal/apperr"
	"github.com/starford/gourmet/internal/models"
	"github.com/starford/gourmet/internal/planner"
	"github.com/starford/gourmet/internal/storage"
)

// Plans returns every weekly plan, including past ones.
func (s *Service) Plans(_ context.Context) ([]models.WeeklyPlan, error) {
	var plans []models.WeeklyPlan
	err := s.run(func(b storage.Backend) error {
		var err error
		plans, err = b.ListPlans()
		return err
	})
	if err != nil {
		return nil, err
	}
	for i := range plans {
		plans[i].DishIDs = nonNilSlice(plans[i].DishIDs)
	}
	return nonNilSlice(plans), nil
}

// Plan returns the plan for one week. A missing plan comes back empty
// rather than as an error.
func (s *Service) Plan(ctx context.Context, year, week int) (models.WeeklyPlan, error) {
	plans, err := s.Plans(ctx)
	if err != nil {
		return models.WeeklyPlan{}, err
	}
	id := models.PlanID(year, week)
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return models.WeeklyPlan{ID: id, Year: year, Week: week, DishIDs: []string{}}, nil
}

// AddDishToPlan assigns a dish to a week and bumps its cooking statistics:
// timesCooked goes up, lastCooked becomes now. Assigning an already planned
// dish is a no-op and leaves the statistics alone.
func (s *Service) AddDishToPlan(ctx context.Context, year, week int, dishID string) error {
	dish, err := s.GetDish(ctx, dishID)
	if err != nil {
		return err
	}

	plan, err := s.Plan(ctx, year, week)
	if err != nil {
		return err
	}
	for _, existing := range plan.DishIDs {
		if existing == dishID {
			return nil
		}
	}
	if planner.IsWeekFull(plan) {
		s.log.Info("week over advisory capacity", "year", year, "week", week, "dishes", len(plan.DishIDs))
	}

	err = s.run(func(b storage.Backend) error {
		return b.AddPlanDish(year, week, dishID)
	})
	if err != nil {
		return err
	}

	now := s.now().UTC()
	dish.TimesCooked++
	dish.LastCooked = &now
	err = s.run(func(b storage.Backend) error {
		return b.SaveDish(dish)
	})
	if err != nil {
		return fmt.Errorf("plan saved but dish statistics failed: %w", err)
	}

	s.notify("plan")
	return nil
}

// RemoveDishFromPlan drops one assignment and decrements timesCooked,
// floored at zero. lastCooked deliberately keeps the value the assignment
// set; callers rely on this asymmetry.
func (s *Service) RemoveDishFromPlan(ctx context.Context, year, week int, dishID string) error {
	plan, err := s.Plan(ctx, year, week)
	if err != nil {
		return err
	}
	assigned := false
	for _, existing := range plan.DishIDs {
		if existing == dishID {
			assigned = true
			break
		}
	}
	if !assigned {
		return apperr.ErrNotFound
	}

	err = s.run(func(b storage.Backend) error {
		return b.RemovePlanDish(year, week, dishID)
	})
	if err != nil {
		return err
	}

	dish, err := s.GetDish(ctx, dishID)
	if err == nil {
		if dish.TimesCooked > 0 {
			dish.TimesCooked--
		}
		err = s.run(func(b storage.Backend) error {
			return b.SaveDish(dish)
		})
		if err != nil {
			return fmt.Errorf("plan updated but dish statistics failed: %w", err)
		}
	}

	s.notify("plan")
	return nil
}

// RelevantWeeks returns the planning window for today.
func (s *Service) RelevantWeeks() []models.CalendarWeek {
	return planner.RelevantWeeks(s.now())
}

// QuickAddDish assigns a dish to the default target week: next week from
// Friday on, otherwise the current week.
func (s *Service) QuickAddDish(ctx context.Context, dishID string) (year, week int, err error) {
	year, week = planner.TargetWeek(s.now())
	return year, week, s.AddDishToPlan(ctx, year, week, dishID)
}
