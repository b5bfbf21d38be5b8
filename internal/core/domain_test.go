package core

import (
	"errors"
	"testing"
	"time"
)

func TestTransactionTypeIsValid(t *testing.T) {
	cases := []struct {
		in TransactionType
		ok bool
	}{
		{Income, true},
		{Expense, true},
		{"", false},
		{"transfer", false},
	}
	for _, tc := range cases {
		if got := tc.in.IsValid(); got != tc.ok {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.ok, got)
		}
	}
}

func TestTransactionApply(t *testing.T) {
	tx := Transaction{ID: 1, Type: Expense, Amount: 10, Category: "Expense", Date: "2024-09-15T10:00:00Z", Tags: []string{"Food"}}

	amount := 25.5
	tags := []string{"Rent", "Utilities"}
	got := tx.Apply(TransactionPatch{Amount: &amount, Tags: &tags})

	if got.ID != 1 || got.Type != Expense || got.Category != "Expense" || got.Date != tx.Date {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if got.Amount != 25.5 {
		t.Fatalf("expected amount 25.5, got %v", got.Amount)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "Rent" {
		t.Fatalf("unexpected tags %v", got.Tags)
	}
	tags[0] = "mutated"
	if got.Tags[0] != "Rent" {
		t.Fatalf("patch tags aliased into transaction")
	}

	empty := []string{}
	cleared := got.Apply(TransactionPatch{Tags: &empty})
	if cleared.Tags == nil || len(cleared.Tags) != 0 {
		t.Fatalf("expected empty non-nil tags, got %#v", cleared.Tags)
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	s := NewState(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))
	s.Transactions = append(s.Transactions, Transaction{ID: 1, Tags: []string{"A"}})
	s.Budgets["2024-09"] = map[string]float64{"A": 10}
	s.Tags = append(s.Tags, "A")
	s.TagColors["A"] = "#000000"

	c := s.Clone()
	c.Transactions[0].Tags[0] = "B"
	c.Budgets["2024-09"]["A"] = 99
	c.Tags[0] = "B"
	c.TagColors["A"] = "#FFFFFF"

	if s.Transactions[0].Tags[0] != "A" || s.Budgets["2024-09"]["A"] != 10 || s.Tags[0] != "A" || s.TagColors["A"] != "#000000" {
		t.Fatalf("clone shares memory with original: %+v", s)
	}
}

func TestNewStateDefaults(t *testing.T) {
	s := NewState(time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC))
	if s.SelectedPeriod != PeriodMonth {
		t.Fatalf("expected month period, got %q", s.SelectedPeriod)
	}
	if s.SelectedCurrency != "" {
		t.Fatalf("expected empty currency, got %q", s.SelectedCurrency)
	}
	want := NotificationSettings{DailyReminder: true, OverspendingWarning: true, WeeklyReport: false}
	if s.NotificationSettings != want {
		t.Fatalf("unexpected notification defaults %+v", s.NotificationSettings)
	}
}

func TestNotificationSettingsApply(t *testing.T) {
	off := false
	on := true
	got := DefaultNotificationSettings().Apply(NotificationSettingsPatch{DailyReminder: &off, WeeklyReport: &on})
	want := NotificationSettings{DailyReminder: false, OverspendingWarning: true, WeeklyReport: true}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestStrictValidator(t *testing.T) {
	v := StrictValidator(time.UTC)
	good := Transaction{Type: Expense, Amount: 1, Date: "2024-09-15", Tags: []string{"Food"}}
	if err := v(good); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"bad type", Transaction{Type: "gift", Amount: 1, Date: "2024-09-15"}, ErrInvalidType},
		{"negative", Transaction{Type: Income, Amount: -1, Date: "2024-09-15"}, ErrInvalidAmount},
		{"bad date", Transaction{Type: Income, Amount: 1, Date: "yesterday"}, ErrInvalidDate},
		{"untagged expense", Transaction{Type: Expense, Amount: 1, Date: "2024-09-15"}, ErrMissingTag},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := v(tc.tx); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDefaultTagColor(t *testing.T) {
	if c, ok := DefaultTagColor("Groceries"); !ok || c != "#FF6B6B" {
		t.Fatalf("unexpected color %q %v", c, ok)
	}
	if _, ok := DefaultTagColor("Pets"); ok {
		t.Fatalf("Pets is not a default tag")
	}
	for range 20 {
		c := RandomColor()
		if len(c) != 7 || c[0] != '#' {
			t.Fatalf("malformed color %q", c)
		}
	}
}
