package core

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaHeaderAndRow(t *testing.T) {
	tx := validTransaction()
	tx.Type = TransactionExpenditure
	tx.Amount = MustMoney("12.50")

	assert.Equal(t, []string{"date", "type", "description", "amount"}, TransactionSchema.Header())
	assert.Equal(t, []string{"2024-01-01", "expenditure", "Invoice 42", "12.5"}, TransactionSchema.Row(tx))
}

func TestIDColumnBlankForDraft(t *testing.T) {
	row := AccountSchema.Row(NewAccount())
	assert.Equal(t, "", row[0])
	row = AccountSchema.Row(NewAccount().WithID(3))
	assert.Equal(t, "3", row[0])
}

func TestBillOrdering(t *testing.T) {
	bills := []Bill{
		{Meta: Meta{ID: 1}, Priority: PriorityLow, DueDate: "2024-01-01"},
		{Meta: Meta{ID: 2}, Priority: PriorityHigh, DueDate: "2024-03-01"},
		{Meta: Meta{ID: 3}, Priority: PriorityHigh, DueDate: "2024-02-01"},
		{Meta: Meta{ID: 4}, Priority: PriorityMedium, DueDate: "2024-01-15"},
	}
	slices.SortStableFunc(bills, BillSchema.Compare)

	var ids []int64
	for _, b := range bills {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []int64{3, 2, 4, 1}, ids)
}

func TestSchemasDeclareResources(t *testing.T) {
	names := []string{
		AccountSchema.Resource, CategorySchema.Resource, TransactionSchema.Resource,
		BudgetSchema.Resource, BillSchema.Resource, InvestmentSchema.Resource,
		CompanySchema.Resource, ProjectSchema.Resource, NotificationSchema.Resource,
		ReviewItemSchema.Resource,
	}
	seen := map[string]bool{}
	for _, n := range names {
		assert.NotEmpty(t, n)
		assert.False(t, seen[n], "duplicate resource %s", n)
		seen[n] = true
	}
}

func TestNameIndex(t *testing.T) {
	companies := []Company{
		{Meta: Meta{ID: 1}, Name: "Acme"},
		{Meta: Meta{ID: 2}, Name: "Globex"},
	}
	idx := NameIndex(companies, Company.RecordID, func(c Company) string { return c.Name })
	assert.Equal(t, "Globex", idx[2])
	assert.Equal(t, "", idx[9])
}

func TestSummarizeTransactions(t *testing.T) {
	txs := []Transaction{
		{Meta: Meta{ID: 1}, Amount: MoneyFromInt(100), Type: TransactionSale, Date: "2024-01-01"},
		{Meta: Meta{ID: 2}, Amount: MoneyFromInt(50), Type: TransactionExpenditure, Date: "2024-01-02"},
	}
	got := SummarizeTransactions(txs)
	assert.True(t, got.TotalSales.Equal(MoneyFromInt(100).Decimal))
	assert.True(t, got.TotalExpenditures.Equal(MoneyFromInt(50).Decimal))
	assert.True(t, got.NetTotal.Equal(MoneyFromInt(50).Decimal))
	assert.Equal(t, 2, got.Count)

	empty := SummarizeTransactions(nil)
	assert.True(t, empty.NetTotal.IsZero())
}
