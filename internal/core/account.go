package core

import (
	"cmp"
	"strings"
	"time"
)

type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
)

var AccountTypes = []AccountType{AccountChecking, AccountSavings, AccountCredit, AccountCash, AccountInvestment}

// Account is a bank, card or cash account. Balance may be negative for credit lines.
type Account struct {
	Meta
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Balance     Money       `json:"balance" gorm:"type:numeric(14,2)"`
	Currency    string      `json:"currency"`
	Institution string      `json:"institution,omitempty"`
}

func NewAccount() Account {
	return Account{Type: AccountTypes[0], Currency: "USD", Balance: ZeroMoney}
}

func (a Account) WithID(id int64) Account { a.ID = id; return a }

func (a Account) WithTimestamps(created, updated time.Time) Account {
	a.stamp(created, updated)
	return a
}

func (a Account) Validate() error {
	return firstErr(
		requireText("name", a.Name),
		checkEnum("type", a.Type, AccountTypes),
		checkCurrency(a.Currency),
	)
}

func checkCurrency(c string) error {
	if len(c) != 3 || strings.ToUpper(c) != c {
		return &ValidationError{Field: "currency", Reason: "must be a 3-letter ISO code"}
	}
	return nil
}

var AccountSchema = Schema[Account]{
	Resource: "accounts",
	Kinds:    enumStrings(AccountTypes),
	Kind:     func(a Account) string { return string(a.Type) },
	Text:     func(a Account) []string { return []string{a.Name, a.Institution} },
	Compare:  func(a, b Account) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
	Columns: []Column[Account]{
		idColumn[Account](),
		{Name: "name", Value: func(a Account) string { return a.Name }},
		{Name: "type", Value: func(a Account) string { return string(a.Type) }},
		{Name: "balance", Value: func(a Account) string { return a.Balance.String() }},
		{Name: "currency", Value: func(a Account) string { return a.Currency }},
		{Name: "institution", Value: func(a Account) string { return a.Institution }},
	},
}
