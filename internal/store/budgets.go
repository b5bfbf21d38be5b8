package store

import (
	"fmt"

	"budgetku/internal/core"
	"budgetku/internal/log"
)

// SetBudget merges limits into the month's budget map, creating it when
// absent, then runs the overspending check.
func (s *Store) SetBudget(month core.Month, limits map[string]float64) error {
	if _, err := core.ParseMonth(string(month)); err != nil {
		return err
	}
	return s.mutate(OpSetBudget, true, func() (bool, error) {
		m, ok := s.state.Budgets[month]
		if !ok {
			m = make(map[string]float64, len(limits))
			s.state.Budgets[month] = m
		}
		for tag, limit := range limits {
			m[tag] = limit
		}
		return true, nil
	})
}

// RemoveBudget deletes one tag's limit from a month. Absent entries are a no-op.
func (s *Store) RemoveBudget(month core.Month, tag string) bool {
	var removed bool
	_ = s.mutate(OpRemoveBudget, false, func() (bool, error) {
		m, ok := s.state.Budgets[month]
		if !ok {
			return false, nil
		}
		if _, ok := m[tag]; !ok {
			return false, nil
		}
		delete(m, tag)
		removed = true
		return true, nil
	})
	return removed
}

// checkOverspend evaluates the overspending rule without letting a failure
// abort the mutation that triggered it.
func (s *Store) checkOverspend() (o *core.Overspend) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Overspending check failed", log.FieldError, fmt.Sprint(r))
			o = nil
		}
	}()
	return s.checkOverspendLocked()
}

// checkOverspendLocked sums, for every expense of the current month and
// every tag on it with a non-zero limit, the expense amount and the limit.
// An expense carrying two budgeted tags therefore counts twice on both sides.
func (s *Store) checkOverspendLocked() *core.Overspend {
	if !s.state.NotificationSettings.OverspendingWarning {
		return nil
	}
	month := core.MonthOf(s.Now())
	limits := s.state.Budgets[month]
	if len(limits) == 0 {
		return nil
	}

	var spent, budget core.Sum
	for _, tx := range s.state.Transactions {
		if tx.Type != core.Expense || !s.inMonth(tx, month) {
			continue
		}
		for _, tag := range tx.Tags {
			if limit := limits[tag]; limit != 0 {
				spent.Add(tx.Amount)
				budget.Add(limit)
			}
		}
	}
	if !spent.Exceeds(budget) {
		return nil
	}
	return &core.Overspend{Month: month, Spent: spent.Float64(), Budget: budget.Float64()}
}
