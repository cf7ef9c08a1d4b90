package services

import (
	"vanta/internal/core"
	"vanta/internal/log"
	"vanta/internal/store"
)

// Set holds one RecordService per entity type.
type Set struct {
	Transactions  *RecordService[core.Transaction]
	Categories    *RecordService[core.Category]
	Budgets       *RecordService[core.Budget]
	Accounts      *RecordService[core.Account]
	Bills         *RecordService[core.Bill]
	Investments   *RecordService[core.Investment]
	Companies     *RecordService[core.Company]
	Projects      *RecordService[core.Project]
	Notifications *RecordService[core.Notification]
	ReviewItems   *RecordService[core.ReviewItem]
}

// Shared are the collaborators every service in a Set uses.
type Shared struct {
	Publisher Publisher
	Cache     Invalidator
	Logger    *log.Logger
}

// Wrap builds a RecordService with the shared collaborators.
func Wrap[T core.Record[T]](sh Shared, adapter store.Adapter[T], schema core.Schema[T]) *RecordService[T] {
	opts := []Option[T]{}
	if sh.Publisher != nil {
		opts = append(opts, WithPublisher[T](sh.Publisher))
	}
	if sh.Cache != nil {
		opts = append(opts, WithInvalidator[T](sh.Cache))
	}
	if sh.Logger != nil {
		opts = append(opts, WithLogger[T](sh.Logger))
	}
	return NewRecordService[T](adapter, schema, opts...)
}

// Exporters lists every service in a stable order.
func (s *Set) Exporters() []Exporter {
	return []Exporter{
		s.Transactions, s.Categories, s.Budgets, s.Accounts, s.Bills,
		s.Investments, s.Companies, s.Projects, s.Notifications, s.ReviewItems,
	}
}

// Exporter returns the service for resource, if any.
func (s *Set) Exporter(resource string) (Exporter, bool) {
	for _, e := range s.Exporters() {
		if e.Resource() == resource {
			return e, true
		}
	}
	return nil, false
}
