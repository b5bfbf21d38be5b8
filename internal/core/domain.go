package core

import (
	"errors"
	"maps"
	"slices"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Transaction is a single income or expense entry. Amount is an unsigned
	// magnitude, the sign is carried by Type. Date is kept as the ISO-8601
	// string it was recorded with.
	Transaction struct {
		ID       int64           `json:"id"`
		Type     TransactionType `json:"type"`
		Amount   float64         `json:"amount"`
		Category string          `json:"category"`
		Date     string          `json:"date"`
		Tags     []string        `json:"tags"`
	}

	// TransactionInput is a transaction before the store assigns its ID.
	TransactionInput struct {
		Type     TransactionType `json:"type"`
		Amount   float64         `json:"amount"`
		Category string          `json:"category"`
		Date     string          `json:"date"`
		Tags     []string        `json:"tags"`
	}

	// TransactionPatch carries a partial update. Nil fields are left untouched.
	TransactionPatch struct {
		Type     *TransactionType `json:"type,omitempty"`
		Amount   *float64         `json:"amount,omitempty"`
		Category *string          `json:"category,omitempty"`
		Date     *string          `json:"date,omitempty"`
		Tags     *[]string        `json:"tags,omitempty"`
	}

	// Budgets maps a month to its per-tag limits.
	Budgets map[Month]map[string]float64

	NotificationSettings struct {
		DailyReminder       bool `json:"dailyReminder"`
		OverspendingWarning bool `json:"overspendingWarning"`
		WeeklyReport        bool `json:"weeklyReport"`
	}

	NotificationSettingsPatch struct {
		DailyReminder       *bool `json:"dailyReminder,omitempty"`
		OverspendingWarning *bool `json:"overspendingWarning,omitempty"`
		WeeklyReport        *bool `json:"weeklyReport,omitempty"`
	}

	// Settings groups the user preferences persisted next to the data.
	Settings struct {
		Currency      string               `json:"selectedCurrency"`
		Period        Period               `json:"selectedPeriod"`
		Notifications NotificationSettings `json:"notificationSettings"`
	}

	// State is the full persisted snapshot.
	State struct {
		Transactions         []Transaction        `json:"transactions"`
		Budgets              Budgets              `json:"budgets"`
		Tags                 []string             `json:"tags"`
		TagColors            map[string]string    `json:"tagColors"`
		SelectedCurrency     string               `json:"selectedCurrency"`
		SelectedPeriod       Period               `json:"selectedPeriod"`
		NotificationSettings NotificationSettings `json:"notificationSettings"`
		CurrentDate          string               `json:"currentDate"`
		// RemindersSent maps a reminder kind to its last send time (RFC 3339).
		RemindersSent map[string]string `json:"remindersSent,omitempty"`
	}
)

var (
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrMissingTag    = errors.New("expense requires at least one tag")
)

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// DefaultNotificationSettings are the toggles of a fresh install.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		DailyReminder:       true,
		OverspendingWarning: true,
		WeeklyReport:        false,
	}
}

// NewState returns the empty snapshot a first run starts from.
func NewState(now time.Time) State {
	return State{
		Transactions:         []Transaction{},
		Budgets:              Budgets{},
		Tags:                 []string{},
		TagColors:            map[string]string{},
		SelectedPeriod:       PeriodMonth,
		NotificationSettings: DefaultNotificationSettings(),
		CurrentDate:          now.UTC().Format(time.RFC3339Nano),
	}
}

// Normalize fills nil collections left behind by older or hand-edited snapshots.
func (s *State) Normalize() {
	if s.Transactions == nil {
		s.Transactions = []Transaction{}
	}
	for i := range s.Transactions {
		if s.Transactions[i].Tags == nil {
			s.Transactions[i].Tags = []string{}
		}
	}
	if s.Budgets == nil {
		s.Budgets = Budgets{}
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	if s.TagColors == nil {
		s.TagColors = map[string]string{}
	}
	if s.SelectedPeriod == "" {
		s.SelectedPeriod = PeriodMonth
	}
}

// Clone returns a deep copy so callers never share slices or maps with the store.
func (s State) Clone() State {
	out := s
	out.Transactions = make([]Transaction, len(s.Transactions))
	for i, tx := range s.Transactions {
		out.Transactions[i] = tx.Clone()
	}
	out.Budgets = make(Budgets, len(s.Budgets))
	for m, limits := range s.Budgets {
		cp := make(map[string]float64, len(limits))
		for tag, v := range limits {
			cp[tag] = v
		}
		out.Budgets[m] = cp
	}
	out.Tags = slices.Clone(s.Tags)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	out.TagColors = make(map[string]string, len(s.TagColors))
	for k, v := range s.TagColors {
		out.TagColors[k] = v
	}
	out.RemindersSent = maps.Clone(s.RemindersSent)
	return out
}

func (tx Transaction) Clone() Transaction {
	tx.Tags = slices.Clone(tx.Tags)
	if tx.Tags == nil {
		tx.Tags = []string{}
	}
	return tx
}

// HasTag reports whether tag is one of the transaction's tags.
func (tx Transaction) HasTag(tag string) bool {
	return slices.Contains(tx.Tags, tag)
}

// Time parses the transaction date. Strings without a zone are read in loc.
func (tx Transaction) Time(loc *time.Location) (time.Time, error) {
	return ParseDate(tx.Date, loc)
}

// Apply merges a patch into the transaction.
func (tx Transaction) Apply(p TransactionPatch) Transaction {
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Category != nil {
		tx.Category = *p.Category
	}
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.Tags != nil {
		tx.Tags = slices.Clone(*p.Tags)
		if tx.Tags == nil {
			tx.Tags = []string{}
		}
	}
	return tx
}

func (in TransactionInput) Transaction(id int64) Transaction {
	tags := slices.Clone(in.Tags)
	if tags == nil {
		tags = []string{}
	}
	return Transaction{
		ID:       id,
		Type:     in.Type,
		Amount:   in.Amount,
		Category: in.Category,
		Date:     in.Date,
		Tags:     tags,
	}
}

func (n NotificationSettings) Apply(p NotificationSettingsPatch) NotificationSettings {
	if p.DailyReminder != nil {
		n.DailyReminder = *p.DailyReminder
	}
	if p.OverspendingWarning != nil {
		n.OverspendingWarning = *p.OverspendingWarning
	}
	if p.WeeklyReport != nil {
		n.WeeklyReport = *p.WeeklyReport
	}
	return n
}
