package store

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"time"

	"budgetku/internal/core"
)

// TransactionsByPeriod returns the transactions dated inside the period
// window anchored at ref, in insertion order. Unparseable dates are skipped
// and an invalid period yields an empty result.
func (s *Store) TransactionsByPeriod(p core.Period, ref time.Time) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.inWindowLocked(p, ref))
}

func (s *Store) inWindowLocked(p core.Period, ref time.Time) []core.Transaction {
	w, err := core.WindowFor(p, ref)
	if err != nil {
		return nil
	}
	var out []core.Transaction
	for _, tx := range s.state.Transactions {
		t, err := tx.Time(s.loc)
		if err != nil {
			continue
		}
		if w.Contains(t) {
			out = append(out, tx)
		}
	}
	return out
}

// Analytics aggregates the period window anchored at ref. TotalBudget is the
// budget of ref's month and TotalSpent mirrors TotalExpense.
func (s *Store) Analytics(p core.Period, ref time.Time) core.Analytics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := s.analyticsKey(p, ref)
	if s.analytics != nil {
		if a, ok := s.analytics.Get(key); ok {
			return copyAnalytics(a)
		}
	}

	var income, expense core.Sum
	byCategory := map[string]*core.Sum{}
	for _, tx := range s.inWindowLocked(p, ref) {
		switch tx.Type {
		case core.Income:
			income.Add(tx.Amount)
		case core.Expense:
			expense.Add(tx.Amount)
			sum, ok := byCategory[tx.Category]
			if !ok {
				sum = &core.Sum{}
				byCategory[tx.Category] = sum
			}
			sum.Add(tx.Amount)
		}
	}

	a := core.Analytics{
		TotalIncome:       income.Float64(),
		TotalExpense:      expense.Float64(),
		ExpenseByCategory: make(map[string]float64, len(byCategory)),
		TotalSpent:        expense.Float64(),
	}
	for cat, sum := range byCategory {
		a.ExpenseByCategory[cat] = sum.Float64()
	}
	if p.IsValid() {
		a.TotalBudget = s.budgetProgressLocked(core.MonthOf(ref)).Budget
	}

	if s.analytics != nil {
		s.analytics.Set(key, copyAnalytics(a))
	}
	return a
}

// analyticsKey identifies a result by the instants of its window and the
// month its budget comes from. Two refs printing the same offset can sit in
// zones whose windows differ, so the ref itself is not part of the key.
func (s *Store) analyticsKey(p core.Period, ref time.Time) string {
	w, err := core.WindowFor(p, ref)
	if err != nil {
		return fmt.Sprintf("%d|%s|invalid", s.version, p)
	}
	return fmt.Sprintf("%d|%d|%d|%s", s.version, w.Start.UnixNano(), w.End.UnixNano(), core.MonthOf(ref))
}

// BudgetProgress sums the month's limits and the month's expenses that carry
// at least one budgeted tag. Each expense counts once.
func (s *Store) BudgetProgress(month core.Month) core.BudgetProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budgetProgressLocked(month)
}

func (s *Store) budgetProgressLocked(month core.Month) core.BudgetProgress {
	limits := s.state.Budgets[month]

	var budget, spent core.Sum
	for _, limit := range limits {
		budget.Add(limit)
	}
	for _, tx := range s.state.Transactions {
		if tx.Type != core.Expense || !s.inMonth(tx, month) {
			continue
		}
		if slices.ContainsFunc(tx.Tags, func(tag string) bool { _, ok := limits[tag]; return ok }) {
			spent.Add(tx.Amount)
		}
	}
	return core.BudgetProgress{
		Budget:    budget.Float64(),
		Spent:     spent.Float64(),
		Remaining: budget.Minus(spent),
	}
}

// BudgetItems lists each budgeted tag of the month with its limit and the
// month's spend on that tag, ordered by tag name.
func (s *Store) BudgetItems(month core.Month) []core.BudgetItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limits := s.state.Budgets[month]
	items := make([]core.BudgetItem, 0, len(limits))
	for _, tag := range slices.Sorted(maps.Keys(limits)) {
		var spent core.Sum
		for _, tx := range s.state.Transactions {
			if tx.Type == core.Expense && tx.HasTag(tag) && s.inMonth(tx, month) {
				spent.Add(tx.Amount)
			}
		}
		items = append(items, core.BudgetItem{Tag: tag, Limit: limits[tag], Spent: spent.Float64()})
	}
	return items
}

// Budgets returns a copy of the month's limits.
func (s *Store) Budgets(month core.Month) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.state.Budgets[month])
}

// TransactionsByTag returns every transaction carrying tag, regardless of date.
func (s *Store) TransactionsByTag(tag string) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Transaction
	for _, tx := range s.state.Transactions {
		if tx.HasTag(tag) {
			out = append(out, tx.Clone())
		}
	}
	return orEmpty(out)
}

// TagsWithoutBudget lists the tags that have no entry in the month's budget.
func (s *Store) TagsWithoutBudget(month core.Month) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limits := s.state.Budgets[month]
	out := []string{}
	for _, tag := range s.state.Tags {
		if _, ok := limits[tag]; !ok {
			out = append(out, tag)
		}
	}
	return out
}

// ExpenseByTag sums the window's expenses per tag, in tag order. Tags with
// no spend are omitted.
func (s *Store) ExpenseByTag(p core.Period, ref time.Time) []core.TagAmount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := s.inWindowLocked(p, ref)
	out := []core.TagAmount{}
	for _, tag := range s.state.Tags {
		var sum core.Sum
		for _, tx := range txs {
			if tx.Type == core.Expense && tx.HasTag(tag) {
				sum.Add(tx.Amount)
			}
		}
		if total := sum.Float64(); total > 0 {
			out = append(out, core.TagAmount{Tag: tag, Color: s.colorLocked(tag), Amount: total})
		}
	}
	return out
}

// History groups the window's transactions by calendar day in ref's
// location, newest day first and newest transaction first within a day.
func (s *Store) History(p core.Period, ref time.Time) []core.DayGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type dated struct {
		tx core.Transaction
		at time.Time
	}
	var all []dated
	for _, tx := range s.inWindowLocked(p, ref) {
		t, _ := tx.Time(s.loc)
		all = append(all, dated{tx: tx.Clone(), at: t.In(ref.Location())})
	}
	slices.SortStableFunc(all, func(a, b dated) int {
		if c := b.at.Compare(a.at); c != 0 {
			return c
		}
		return cmp.Compare(b.tx.ID, a.tx.ID)
	})

	groups := []core.DayGroup{}
	for _, d := range all {
		day := d.at.Format("2006-01-02")
		if n := len(groups); n == 0 || groups[n-1].Date != day {
			groups = append(groups, core.DayGroup{Date: day})
		}
		g := &groups[len(groups)-1]
		g.Transactions = append(g.Transactions, d.tx)
	}
	return groups
}

// inMonth reports whether tx is dated in month, using the calendar month of
// its own timestamp.
func (s *Store) inMonth(tx core.Transaction, month core.Month) bool {
	t, err := tx.Time(s.loc)
	if err != nil {
		return false
	}
	return core.MonthOf(t) == month
}

func cloneAll(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.Clone())
	}
	return out
}

func orEmpty(txs []core.Transaction) []core.Transaction {
	if txs == nil {
		return []core.Transaction{}
	}
	return txs
}

func copyAnalytics(a core.Analytics) core.Analytics {
	a.ExpenseByCategory = maps.Clone(a.ExpenseByCategory)
	if a.ExpenseByCategory == nil {
		a.ExpenseByCategory = map[string]float64{}
	}
	return a
}
