package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetku/internal/core"
)

func TestInitializeTagsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.True(t, s.InitializeTags())

	tags, colors := s.Tags(), s.TagColors()
	require.Len(t, tags, len(core.DefaultTags))
	assert.Equal(t, "#FF6B6B", colors["Groceries"])

	assert.False(t, s.InitializeTags())
	assert.Equal(t, tags, s.Tags())
	assert.Equal(t, colors, s.TagColors())
}

func TestInitializeTagsSkipsNonEmptyCollection(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddTag("Pets")
	require.NoError(t, err)
	assert.False(t, s.InitializeTags())
	assert.Equal(t, []string{"Pets"}, s.Tags())
}

func TestAddTag(t *testing.T) {
	s := newTestStore(t)

	color, err := s.AddTag("Pets")
	require.NoError(t, err)
	assert.Equal(t, "#123456", color)

	color, err = s.AddTag("Groceries")
	require.NoError(t, err)
	assert.Equal(t, "#FF6B6B", color)

	_, err = s.AddTag("Pets")
	require.ErrorIs(t, err, ErrDuplicateTag)
	assert.Equal(t, []string{"Pets", "Groceries"}, s.Tags())

	assert.Equal(t, "#123456", s.TagColor("Pets"))
	assert.Equal(t, core.FallbackTagColor, s.TagColor("Unknown"))
}

func TestEditTagRoundTrip(t *testing.T) {
	s := newTestStore(t)
	s.InitializeTags()
	_, _ = s.AddTransaction(expense(10, "2024-09-15", "Groceries", "Dining Out"))
	_, _ = s.AddTransaction(expense(20, "2024-09-15", "Utilities"))

	before := s.Snapshot()

	requireRenamed(t, s, "Groceries", "Food")
	mid := s.Snapshot()
	assert.Equal(t, "Food", mid.Tags[0])
	assert.Equal(t, "#FF6B6B", mid.TagColors["Food"])
	assert.NotContains(t, mid.TagColors, "Groceries")
	assert.Equal(t, []string{"Food", "Dining Out"}, mid.Transactions[0].Tags)
	assert.Empty(t, s.TransactionsByTag("Groceries"))

	requireRenamed(t, s, "Food", "Groceries")
	after := s.Snapshot()
	assert.Equal(t, before.Tags, after.Tags)
	assert.Equal(t, before.TagColors, after.TagColors)
	assert.Equal(t, before.Transactions, after.Transactions)
}

func TestEditTagLeavesBudgetsAlone(t *testing.T) {
	s := newTestStore(t)
	s.InitializeTags()
	require.NoError(t, s.SetBudget("2024-09", map[string]float64{"Groceries": 100}))

	requireRenamed(t, s, "Groceries", "Food")
	assert.Equal(t, map[string]float64{"Groceries": 100}, s.Budgets("2024-09"))
	assert.Contains(t, s.TagsWithoutBudget("2024-09"), "Food")
}

func TestEditTagErrors(t *testing.T) {
	s := newTestStore(t)
	s.InitializeTags()
	version := s.Version()

	requireRenamed(t, s, "Groceries", "Groceries")

	ok, err := s.EditTag("Nope", "Other")
	require.NoError(t, err)
	assert.False(t, ok, "unknown tags are left alone")

	_, err = s.EditTag("Groceries", "Hobbies")
	require.ErrorIs(t, err, ErrDuplicateTag)
	assert.Equal(t, version, s.Version())
}

func TestDeleteTagCascade(t *testing.T) {
	s := newTestStore(t)
	s.InitializeTags()
	only, _ := s.AddTransaction(expense(10, "2024-09-15", "Groceries"))
	both, _ := s.AddTransaction(expense(20, "2024-09-15", "Groceries", "Hobbies"))
	require.NoError(t, s.SetBudget("2024-09", map[string]float64{"Groceries": 100}))

	require.True(t, s.DeleteTag("Groceries"))

	snap := s.Snapshot()
	assert.NotContains(t, snap.Tags, "Groceries")
	assert.NotContains(t, snap.TagColors, "Groceries")
	for _, tx := range snap.Transactions {
		assert.NotContains(t, tx.Tags, "Groceries")
	}
	require.Len(t, snap.Transactions, 2)

	got, ok := s.Transaction(only.ID)
	require.True(t, ok)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)

	got, _ = s.Transaction(both.ID)
	assert.Equal(t, []string{"Hobbies"}, got.Tags)

	assert.Equal(t, map[string]float64{"Groceries": 100}, s.Budgets("2024-09"))
	version := s.Version()
	assert.False(t, s.DeleteTag("Groceries"))
	assert.Equal(t, version, s.Version())
}

func TestEditTagRefusesOrphanedName(t *testing.T) {
	s := newTestStore(t)
	s.InitializeTags()
	_, _ = s.AddTransaction(expense(10, "2024-09-15", "Groceries", "Food"))
	before := s.Snapshot()

	_, err := s.EditTag("Groceries", "Food")
	require.ErrorIs(t, err, ErrDuplicateTag)
	assert.Equal(t, before, s.Snapshot())
}

func requireRenamed(t *testing.T, s *Store, oldName, newName string) {
	t.Helper()
	ok, err := s.EditTag(oldName, newName)
	require.NoError(t, err)
	require.True(t, ok)
}
