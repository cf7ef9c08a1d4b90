package core

import "time"

type BudgetPeriod string

const (
	BudgetWeekly    BudgetPeriod = "weekly"
	BudgetMonthly   BudgetPeriod = "monthly"
	BudgetQuarterly BudgetPeriod = "quarterly"
	BudgetYearly    BudgetPeriod = "yearly"
)

var BudgetPeriods = []BudgetPeriod{BudgetMonthly, BudgetWeekly, BudgetQuarterly, BudgetYearly}

// Budget caps spending for a category over a period.
type Budget struct {
	Meta
	Name       string       `json:"name"`
	CategoryID int64        `json:"category_id,omitempty"`
	Amount     Money        `json:"amount" gorm:"type:numeric(14,2)"`
	Period     BudgetPeriod `json:"period"`
	StartDate  string       `json:"start_date"`
	EndDate    string       `json:"end_date,omitempty"`
}

func NewBudget() Budget { return Budget{Period: BudgetPeriods[0]} }

func (b Budget) WithID(id int64) Budget { b.ID = id; return b }

func (b Budget) WithTimestamps(created, updated time.Time) Budget {
	b.stamp(created, updated)
	return b
}

func (b Budget) Validate() error {
	return firstErr(
		requireText("name", b.Name),
		requirePositive("amount", b.Amount),
		checkEnum("period", b.Period, BudgetPeriods),
		checkDate("start_date", b.StartDate, true),
		checkDate("end_date", b.EndDate, false),
		checkRange("start_date", b.StartDate, "end_date", b.EndDate),
	)
}

var BudgetSchema = Schema[Budget]{
	Resource: "budgets",
	Kinds:    enumStrings(BudgetPeriods),
	Kind:     func(b Budget) string { return string(b.Period) },
	Date:     func(b Budget) string { return b.StartDate },
	Text:     func(b Budget) []string { return []string{b.Name} },
	Compare:  func(a, b Budget) int { return descending(a.StartDate, b.StartDate) },
	Columns: []Column[Budget]{
		idColumn[Budget](),
		{Name: "name", Value: func(b Budget) string { return b.Name }},
		{Name: "category_id", Value: func(b Budget) string { return formatID(b.CategoryID) }},
		{Name: "amount", Value: func(b Budget) string { return b.Amount.String() }},
		{Name: "period", Value: func(b Budget) string { return string(b.Period) }},
		{Name: "start_date", Value: func(b Budget) string { return b.StartDate }},
		{Name: "end_date", Value: func(b Budget) string { return b.EndDate }},
	},
}
