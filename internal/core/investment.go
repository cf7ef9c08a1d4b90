package core

import "time"

type InvestmentType string

const (
	InvestmentStock      InvestmentType = "stock"
	InvestmentBond       InvestmentType = "bond"
	InvestmentFund       InvestmentType = "fund"
	InvestmentCrypto     InvestmentType = "crypto"
	InvestmentRealEstate InvestmentType = "real_estate"
	InvestmentOther      InvestmentType = "other"
)

var InvestmentTypes = []InvestmentType{
	InvestmentStock, InvestmentBond, InvestmentFund, InvestmentCrypto, InvestmentRealEstate, InvestmentOther,
}

type Investment struct {
	Meta
	Name         string         `json:"name"`
	Type         InvestmentType `json:"type"`
	Amount       Money          `json:"amount" gorm:"type:numeric(14,2)"`
	CurrentValue Money          `json:"current_value" gorm:"type:numeric(14,2)"`
	PurchaseDate string         `json:"purchase_date"`
	Notes        string         `json:"notes,omitempty"`
}

func NewInvestment() Investment {
	return Investment{Type: InvestmentTypes[0], CurrentValue: ZeroMoney}
}

func (i Investment) WithID(id int64) Investment { i.ID = id; return i }

func (i Investment) WithTimestamps(created, updated time.Time) Investment {
	i.stamp(created, updated)
	return i
}

func (i Investment) Validate() error {
	return firstErr(
		requireText("name", i.Name),
		checkEnum("type", i.Type, InvestmentTypes),
		requirePositive("amount", i.Amount),
		requireNonNegative("current_value", i.CurrentValue),
		checkDate("purchase_date", i.PurchaseDate, true),
	)
}

// Gain is current value minus the invested amount.
func (i Investment) Gain() Money { return i.CurrentValue.Minus(i.Amount) }

var InvestmentSchema = Schema[Investment]{
	Resource: "investments",
	Kinds:    enumStrings(InvestmentTypes),
	Kind:     func(i Investment) string { return string(i.Type) },
	Date:     func(i Investment) string { return i.PurchaseDate },
	Text:     func(i Investment) []string { return []string{i.Name, i.Notes} },
	Compare:  func(a, b Investment) int { return descending(a.PurchaseDate, b.PurchaseDate) },
	Columns: []Column[Investment]{
		idColumn[Investment](),
		{Name: "name", Value: func(i Investment) string { return i.Name }},
		{Name: "type", Value: func(i Investment) string { return string(i.Type) }},
		{Name: "amount", Value: func(i Investment) string { return i.Amount.String() }},
		{Name: "current_value", Value: func(i Investment) string { return i.CurrentValue.String() }},
		{Name: "gain", Value: func(i Investment) string { return i.Gain().String() }},
		{Name: "purchase_date", Value: func(i Investment) string { return i.PurchaseDate }},
	},
}
