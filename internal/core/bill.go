package core

import (
	"cmp"
	"time"
)

type BillStatus string

const (
	BillPending BillStatus = "pending"
	BillPaid    BillStatus = "paid"
	BillOverdue BillStatus = "overdue"
)

var BillStatuses = []BillStatus{BillPending, BillPaid, BillOverdue}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// BillPriorities excludes urgent; that level is reserved for notifications.
var BillPriorities = []Priority{PriorityMedium, PriorityLow, PriorityHigh}

// Rank orders priorities from low (1) to urgent (4); unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	}
	return 0
}

// Bill is a payable with a due date.
type Bill struct {
	Meta
	Name     string     `json:"name"`
	Vendor   string     `json:"vendor,omitempty"`
	Amount   Money      `json:"amount" gorm:"type:numeric(14,2)"`
	DueDate  string     `json:"due_date"`
	Status   BillStatus `json:"status"`
	Priority Priority   `json:"priority"`
	Notes    string     `json:"notes,omitempty"`
}

func NewBill() Bill { return Bill{Status: BillStatuses[0], Priority: BillPriorities[0]} }

func (b Bill) WithID(id int64) Bill { b.ID = id; return b }

func (b Bill) WithTimestamps(created, updated time.Time) Bill {
	b.stamp(created, updated)
	return b
}

func (b Bill) Validate() error {
	return firstErr(
		requireText("name", b.Name),
		requirePositive("amount", b.Amount),
		checkDate("due_date", b.DueDate, true),
		checkEnum("status", b.Status, BillStatuses),
		checkEnum("priority", b.Priority, BillPriorities),
	)
}

// BillSchema sorts by priority descending, then due date ascending.
var BillSchema = Schema[Bill]{
	Resource: "bills",
	Kinds:    enumStrings(BillStatuses),
	Kind:     func(b Bill) string { return string(b.Status) },
	Date:     func(b Bill) string { return b.DueDate },
	Text:     func(b Bill) []string { return []string{b.Name, b.Vendor, b.Notes} },
	Compare: func(a, b Bill) int {
		if c := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(a.DueDate, b.DueDate)
	},
	Columns: []Column[Bill]{
		idColumn[Bill](),
		{Name: "name", Value: func(b Bill) string { return b.Name }},
		{Name: "vendor", Value: func(b Bill) string { return b.Vendor }},
		{Name: "amount", Value: func(b Bill) string { return b.Amount.String() }},
		{Name: "due_date", Value: func(b Bill) string { return b.DueDate }},
		{Name: "status", Value: func(b Bill) string { return string(b.Status) }},
		{Name: "priority", Value: func(b Bill) string { return string(b.Priority) }},
	},
}
