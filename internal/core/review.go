package core

import (
	"strconv"
	"time"
)

type DocumentType string

const (
	DocumentInvoice  DocumentType = "invoice"
	DocumentReceipt  DocumentType = "receipt"
	DocumentContract DocumentType = "contract"
	DocumentOther    DocumentType = "other"
)

var DocumentTypes = []DocumentType{DocumentInvoice, DocumentReceipt, DocumentContract, DocumentOther}

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

var ReviewStatuses = []ReviewStatus{ReviewPending, ReviewApproved, ReviewRejected}

// ReviewItem is an extraction result waiting for a human decision. The
// extraction itself happens upstream; only its output is stored here.
type ReviewItem struct {
	Meta
	DocumentName string       `json:"document_name"`
	DocumentType DocumentType `json:"document_type"`
	Status       ReviewStatus `json:"status"`
	Confidence   float64      `json:"confidence"`
	Amount       Money        `json:"amount" gorm:"type:numeric(14,2)"`
	Date         string       `json:"date,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	Reviewer     string       `json:"reviewer,omitempty"`
}

func NewReviewItem() ReviewItem {
	return ReviewItem{DocumentType: DocumentTypes[0], Status: ReviewStatuses[0], Amount: ZeroMoney}
}

func (r ReviewItem) WithID(id int64) ReviewItem { r.ID = id; return r }

func (r ReviewItem) WithTimestamps(created, updated time.Time) ReviewItem {
	r.stamp(created, updated)
	return r
}

func (r ReviewItem) Validate() error {
	if err := firstErr(
		requireText("document_name", r.DocumentName),
		checkEnum("document_type", r.DocumentType, DocumentTypes),
		checkEnum("status", r.Status, ReviewStatuses),
		requireNonNegative("amount", r.Amount),
		checkDate("date", r.Date, false),
	); err != nil {
		return err
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return &ValidationError{Field: "confidence", Reason: "must be between 0 and 1"}
	}
	if r.Status != ReviewPending && r.Reviewer == "" {
		return &ValidationError{Field: "reviewer", Reason: "is required once a decision is made"}
	}
	return nil
}

var ReviewItemSchema = Schema[ReviewItem]{
	Resource: "review_items",
	Kinds:    enumStrings(ReviewStatuses),
	Kind:     func(r ReviewItem) string { return string(r.Status) },
	Date:     func(r ReviewItem) string { return r.Date },
	Text:     func(r ReviewItem) []string { return []string{r.DocumentName, r.Notes, r.Reviewer} },
	Compare:  func(a, b ReviewItem) int { return descending(a.Date, b.Date) },
	Columns: []Column[ReviewItem]{
		idColumn[ReviewItem](),
		{Name: "date", Value: func(r ReviewItem) string { return r.Date }},
		{Name: "document_name", Value: func(r ReviewItem) string { return r.DocumentName }},
		{Name: "document_type", Value: func(r ReviewItem) string { return string(r.DocumentType) }},
		{Name: "status", Value: func(r ReviewItem) string { return string(r.Status) }},
		{Name: "confidence", Value: func(r ReviewItem) string { return strconv.FormatFloat(r.Confidence, 'f', 2, 64) }},
		{Name: "amount", Value: func(r ReviewItem) string { return r.Amount.String() }},
	},
}
