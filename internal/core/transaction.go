package core

import "time"

// TransactionType is the closed set of transaction directions.
type TransactionType string

const (
	TransactionSale        TransactionType = "sale"
	TransactionExpenditure TransactionType = "expenditure"
)

// TransactionTypes lists the declared values; the first is the default.
var TransactionTypes = []TransactionType{TransactionSale, TransactionExpenditure}

// Transaction is a dated sale or expenditure.
type Transaction struct {
	Meta
	Date        string          `json:"date"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	Amount      Money           `json:"amount" gorm:"type:numeric(14,2)"`
	AccountID   int64           `json:"account_id,omitempty"`
	CategoryID  int64           `json:"category_id,omitempty"`
}

// NewTransaction returns the blank draft a "new transaction" form starts from.
func NewTransaction() Transaction {
	return Transaction{Type: TransactionTypes[0]}
}

func (t Transaction) WithID(id int64) Transaction { t.ID = id; return t }

func (t Transaction) WithTimestamps(created, updated time.Time) Transaction {
	t.stamp(created, updated)
	return t
}

// Validate enforces the required, non-empty and positive checks on
// amount, description and date.
func (t Transaction) Validate() error {
	return firstErr(
		checkDate("date", t.Date, true),
		checkEnum("type", t.Type, TransactionTypes),
		requireText("description", t.Description),
		maxLen("description", t.Description, 500),
		requirePositive("amount", t.Amount),
	)
}

// TransactionSchema orders transactions reverse-chronologically.
var TransactionSchema = Schema[Transaction]{
	Resource: "transactions",
	Kinds:    enumStrings(TransactionTypes),
	Kind:     func(t Transaction) string { return string(t.Type) },
	Date:     func(t Transaction) string { return t.Date },
	Text:     func(t Transaction) []string { return []string{t.Description} },
	Compare:  func(a, b Transaction) int { return descending(a.Date, b.Date) },
	Columns: []Column[Transaction]{
		{Name: "date", Value: func(t Transaction) string { return t.Date }},
		{Name: "type", Value: func(t Transaction) string { return string(t.Type) }},
		{Name: "description", Value: func(t Transaction) string { return t.Description }},
		{Name: "amount", Value: func(t Transaction) string { return t.Amount.String() }},
	},
}

// Totals are the dashboard figures computed over a set of transactions.
type Totals struct {
	TotalSales        Money `json:"totalSales"`
	TotalExpenditures Money `json:"totalExpenditures"`
	NetTotal          Money `json:"netTotal"`
	Count             int   `json:"count"`
}

// SummarizeTransactions sums sales and expenditures; NetTotal is their difference.
func SummarizeTransactions(txs []Transaction) Totals {
	totals := Totals{TotalSales: ZeroMoney, TotalExpenditures: ZeroMoney, Count: len(txs)}
	for _, t := range txs {
		switch t.Type {
		case TransactionSale:
			totals.TotalSales = totals.TotalSales.Plus(t.Amount)
		case TransactionExpenditure:
			totals.TotalExpenditures = totals.TotalExpenditures.Plus(t.Amount)
		}
	}
	totals.NetTotal = totals.TotalSales.Minus(totals.TotalExpenditures)
	return totals
}
