package core

// Analytics is the aggregate shown for one period window.
type Analytics struct {
	TotalIncome       float64            `json:"totalIncome"`
	TotalExpense      float64            `json:"totalExpense"`
	ExpenseByCategory map[string]float64 `json:"expenseByCategory"`
	TotalBudget       float64            `json:"totalBudget"`
	TotalSpent        float64            `json:"totalSpent"`
}

// BudgetProgress compares a month's total limit with what was spent on
// budgeted tags. Remaining is always Budget - Spent.
type BudgetProgress struct {
	Budget    float64 `json:"budget"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
}

// BudgetItem is one row of the budget screen.
type BudgetItem struct {
	Tag   string  `json:"tag"`
	Limit float64 `json:"limit"`
	Spent float64 `json:"spent"`
}

// TagAmount is a tag's share of the expenses in a window.
type TagAmount struct {
	Tag    string  `json:"tag"`
	Color  string  `json:"color"`
	Amount float64 `json:"amount"`
}

// DayGroup holds the transactions of one calendar day, newest first.
type DayGroup struct {
	Date         string        `json:"date"`
	Transactions []Transaction `json:"transactions"`
}

// Overspend describes a month whose budgeted spend crossed the warning threshold.
type Overspend struct {
	Month  Month   `json:"month"`
	Spent  float64 `json:"spent"`
	Budget float64 `json:"budget"`
}

// OverspendRatio is the share of the budget that triggers a warning.
const OverspendRatio = 0.9

// SupportedCurrencies lists the currency codes offered by the picker.
var SupportedCurrencies = []string{"IDR", "USD"}
