package store

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetku/internal/cache"
	"budgetku/internal/core"
)

var sept15 = time.Date(2024, 9, 15, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	clock := func() time.Time { return sept15 }
	base := []Option{WithClock(clock), WithColorFunc(func() string { return "#123456" })}
	return New(core.NewState(sept15), append(base, opts...)...)
}

func expense(amount float64, date string, tags ...string) core.TransactionInput {
	return core.TransactionInput{Type: core.Expense, Amount: amount, Category: "Expense", Date: date, Tags: tags}
}

func income(amount float64, date string) core.TransactionInput {
	return core.TransactionInput{Type: core.Income, Amount: amount, Category: "Income", Date: date}
}

func TestAddTransactionAssignsIncreasingIDs(t *testing.T) {
	s := newTestStore(t)

	a, err := s.AddTransaction(income(1, "2024-09-15T10:00:00Z"))
	require.NoError(t, err)
	b, err := s.AddTransaction(income(2, "2024-09-15T10:00:00Z"))
	require.NoError(t, err)

	assert.Equal(t, sept15.UnixMilli(), a.ID)
	assert.Equal(t, a.ID+1, b.ID)
	assert.Equal(t, uint64(2), s.Version())
}

func TestNewKeepsIDsAboveSnapshot(t *testing.T) {
	st := core.NewState(sept15)
	st.Transactions = []core.Transaction{{ID: sept15.UnixMilli() + 50, Type: core.Income, Date: "2024-09-01"}}
	s := New(st, WithClock(func() time.Time { return sept15 }))

	tx, err := s.AddTransaction(income(1, "2024-09-15"))
	require.NoError(t, err)
	assert.Equal(t, sept15.UnixMilli()+51, tx.ID)
}

func TestAcceptsInvalidInputWithoutValidator(t *testing.T) {
	s := newTestStore(t)
	tx, err := s.AddTransaction(core.TransactionInput{Type: "gift", Amount: -5, Date: "not a date"})
	require.NoError(t, err)
	assert.Equal(t, -5.0, tx.Amount)
	assert.NotNil(t, tx.Tags)
	assert.Empty(t, s.TransactionsByPeriod(core.PeriodMonth, sept15), "unparseable dates fall outside every window")
}

func TestValidatorRejects(t *testing.T) {
	s := newTestStore(t, WithValidator(core.StrictValidator(time.UTC)))

	_, err := s.AddTransaction(expense(10, "2024-09-15"))
	require.ErrorIs(t, err, core.ErrMissingTag)
	assert.Equal(t, uint64(0), s.Version())

	tx, err := s.AddTransaction(expense(10, "2024-09-15", "Food"))
	require.NoError(t, err)

	neg := -1.0
	_, found, err := s.EditTransaction(tx.ID, core.TransactionPatch{Amount: &neg})
	require.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.False(t, found)
	got, _ := s.Transaction(tx.ID)
	assert.Equal(t, 10.0, got.Amount)
}

func TestEditAndDeleteTransaction(t *testing.T) {
	s := newTestStore(t)
	tx, err := s.AddTransaction(expense(10, "2024-09-15T10:00:00Z", "Food"))
	require.NoError(t, err)

	amount := 42.0
	edited, found, err := s.EditTransaction(tx.ID, core.TransactionPatch{Amount: &amount})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 42.0, edited.Amount)
	assert.Equal(t, []string{"Food"}, edited.Tags)

	version := s.Version()
	_, found, err = s.EditTransaction(999, core.TransactionPatch{Amount: &amount})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, version, s.Version(), "unknown id must not change state")

	assert.False(t, s.DeleteTransaction(999))
	assert.True(t, s.DeleteTransaction(tx.ID))
	_, ok := s.Transaction(tx.ID)
	assert.False(t, ok)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	s := newTestStore(t)
	tx, err := s.AddTransaction(expense(10, "2024-09-15", "Food"))
	require.NoError(t, err)

	tx.Tags[0] = "Mutated"
	list := s.TransactionsByTag("Food")
	require.Len(t, list, 1)
	list[0].Tags[0] = "Mutated"

	got, _ := s.Transaction(tx.ID)
	assert.Equal(t, []string{"Food"}, got.Tags)
}

func TestBudgetProgressExample(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddTransaction(expense(300, "2024-09-15T10:00:00Z", "Food"))
	require.NoError(t, err)
	require.NoError(t, s.SetBudget("2024-09", map[string]float64{"Food": 500}))

	assert.Equal(t, core.BudgetProgress{Budget: 500, Spent: 300, Remaining: 200}, s.BudgetProgress("2024-09"))
}

func TestBudgetProgressCountsEachExpenseOnce(t *testing.T) {
	s := newTestStore(t)
	_, _ = s.AddTransaction(expense(100, "2024-09-02", "Food", "Dining Out"))
	_, _ = s.AddTransaction(expense(50, "2024-09-03", "Rent"))
	_, _ = s.AddTransaction(expense(70, "2024-10-01", "Food"))
	_, _ = s.AddTransaction(income(1000, "2024-09-01"))
	require.NoError(t, s.SetBudget("2024-09", map[string]float64{"Food": 200, "Dining Out": 100}))

	p := s.BudgetProgress("2024-09")
	assert.Equal(t, 300.0, p.Budget)
	assert.Equal(t, 100.0, p.Spent)
	assert.Equal(t, p.Budget-p.Spent, p.Remaining)

	empty := s.BudgetProgress("2023-01")
	assert.Equal(t, core.BudgetProgress{}, empty)
}

func TestSetBudgetMergesAndRemoveBudget(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetBudget("2024-09", map[string]float64{"Food": 100}))
	require.NoError(t, s.SetBudget("2024-09", map[string]float64{"Rent": 900, "Food": 150}))
	assert.Equal(t, map[string]float64{"Food": 150, "Rent": 900}, s.Budgets("2024-09"))

	require.ErrorIs(t, s.SetBudget("2024-9", map[string]float64{"Food": 1}), core.ErrInvalidMonth)

	assert.True(t, s.RemoveBudget("2024-09", "Food"))
	assert.False(t, s.RemoveBudget("2024-09", "Food"))
	assert.False(t, s.RemoveBudget("2030-01", "Food"))
	assert.Equal(t, map[string]float64{"Rent": 900}, s.Budgets("2024-09"))
}

func TestBudgetItems(t *testing.T) {
	s := newTestStore(t)
	_, _ = s.AddTransaction(expense(100, "2024-09-02", "Food", "Dining Out"))
	_, _ = s.AddTransaction(expense(25, "2024-09-03", "Food"))
	require.NoError(t, s.SetBudget("2024-09", map[string]float64{"Food": 200, "Dining Out": 100, "Rent": 800}))

	assert.Equal(t, []core.BudgetItem{
		{Tag: "Dining Out", Limit: 100, Spent: 100},
		{Tag: "Food", Limit: 200, Spent: 125},
		{Tag: "Rent", Limit: 800, Spent: 0},
	}, s.BudgetItems("2024-09"))
}

func TestTagsWithoutBudget(t *testing.T) {
	s := newTestStore(t)
	s.InitializeTags()
	require.NoError(t, s.SetBudget("2024-09", map[string]float64{"Groceries": 100, "Hobbies": 10, "Orphan": 5}))

	got := s.TagsWithoutBudget("2024-09")
	assert.Len(t, got, len(core.DefaultTags)-2)
	assert.NotContains(t, got, "Groceries")
	assert.NotContains(t, got, "Orphan")
	assert.Equal(t, s.Tags(), s.TagsWithoutBudget("2025-01"))
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	s.SetCurrency("IDR")
	require.NoError(t, s.SetSelectedPeriod(core.PeriodWeek))
	require.ErrorIs(t, s.SetSelectedPeriod("year"), core.ErrInvalidPeriod)

	on := true
	got := s.UpdateNotificationSettings(core.NotificationSettingsPatch{WeeklyReport: &on})
	assert.True(t, got.WeeklyReport)
	assert.True(t, got.DailyReminder)

	assert.Equal(t, core.Settings{
		Currency:      "IDR",
		Period:        core.PeriodWeek,
		Notifications: core.NotificationSettings{DailyReminder: true, OverspendingWarning: true, WeeklyReport: true},
	}, s.Settings())
}

func TestChangeEvents(t *testing.T) {
	s := newTestStore(t)
	var events []ChangeEvent
	s.OnChange(func(e ChangeEvent) { events = append(events, e) })
	s.OnChange(func(ChangeEvent) { panic("broken handler") })

	_, err := s.AddTransaction(income(5, "2024-09-15"))
	require.NoError(t, err)
	s.SetCurrency("USD")
	s.SetCurrency("USD")
	s.DeleteTransaction(12345)

	require.Len(t, events, 2)
	assert.Equal(t, OpAddTransaction, events[0].Op)
	assert.Equal(t, uint64(1), events[0].Version)
	assert.Len(t, events[0].Snapshot.Transactions, 1)
	assert.Empty(t, events[0].Snapshot.SelectedCurrency)
	assert.Equal(t, "USD", events[1].Snapshot.SelectedCurrency)
}

func TestConcurrentAccess(t *testing.T) {
	s := newTestStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.AddTransaction(expense(1, "2024-09-15", "Food"))
		}()
		go func() {
			defer wg.Done()
			_ = s.Analytics(core.PeriodMonth, sept15)
		}()
	}
	wg.Wait()

	assert.Len(t, s.TransactionsByTag("Food"), 20)
	ids := map[int64]bool{}
	for _, tx := range s.Snapshot().Transactions {
		ids[tx.ID] = true
	}
	assert.Len(t, ids, 20)
}

func TestAnalyticsCacheIsKeyedByVersion(t *testing.T) {
	c := cache.NewLRUCache[core.Analytics](8, time.Minute)
	s := newTestStore(t, WithAnalyticsCache(c))

	_, _ = s.AddTransaction(income(100, "2024-09-15"))
	first := s.Analytics(core.PeriodMonth, sept15)
	first.ExpenseByCategory["tamper"] = 1
	again := s.Analytics(core.PeriodMonth, sept15)
	assert.NotContains(t, again.ExpenseByCategory, "tamper")
	assert.Equal(t, uint64(1), c.Stats().Hits)

	_, _ = s.AddTransaction(income(50, "2024-09-15"))
	assert.Equal(t, 150.0, s.Analytics(core.PeriodMonth, sept15).TotalIncome)
}

func TestAnalyticsCacheSeparatesZonesWithSameOffset(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("zone database unavailable: %v", err)
	}
	s := newTestStore(t, WithAnalyticsCache(cache.NewLRUCache[core.Analytics](8, time.Minute)))
	_, _ = s.AddTransaction(expense(100, "2024-11-01T04:30:00Z"))

	// Both refs print as 2024-11-15T12:00:00-05:00, but New York's November
	// starts at 04:00Z while the fixed zone's starts at 05:00Z.
	fixed := time.Date(2024, 11, 15, 12, 0, 0, 0, time.FixedZone("", -5*60*60))
	zoned := time.Date(2024, 11, 15, 12, 0, 0, 0, ny)

	assert.Equal(t, 0.0, s.Analytics(core.PeriodMonth, fixed).TotalExpense)
	assert.Equal(t, 100.0, s.Analytics(core.PeriodMonth, zoned).TotalExpense)
	assert.Len(t, s.TransactionsByPeriod(core.PeriodMonth, zoned), 1)
	assert.Equal(t, 0.0, s.Analytics(core.PeriodMonth, fixed).TotalExpense)
}

func TestExtremeAmountsStayFinite(t *testing.T) {
	s := newTestStore(t)
	got := collectOverspend(s)

	require.NoError(t, s.SetBudget("2024-09", map[string]float64{"Food": 500}))
	for range 2 {
		_, err := s.AddTransaction(expense(1e308, "2024-09-10", "Food"))
		require.NoError(t, err)
	}

	p := s.BudgetProgress("2024-09")
	assert.Equal(t, 500.0, p.Budget)
	assert.Equal(t, math.MaxFloat64, p.Spent)
	assert.Equal(t, -math.MaxFloat64, p.Remaining)
	assert.Equal(t, math.MaxFloat64, s.Analytics(core.PeriodMonth, sept15).TotalExpense)
	require.Len(t, *got, 2)
	assert.Equal(t, math.MaxFloat64, (*got)[1].Spent)

	_, err := s.AddTag("Fresh")
	require.NoError(t, err)
	assert.Contains(t, s.Tags(), "Fresh")
}

func TestPanicDuringMutationReleasesLock(t *testing.T) {
	s := newTestStore(t)
	assert.Panics(t, func() {
		_ = s.mutate("explode", true, func() (bool, error) { panic("boom") })
	})

	done := make(chan struct{})
	go func() {
		_, _ = s.AddTag("After")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("store stayed locked after a panicking mutation")
	}
}
