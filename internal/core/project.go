package core

import "time"

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectPlanning  ProjectStatus = "planning"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCancelled ProjectStatus = "cancelled"
)

var ProjectStatuses = []ProjectStatus{ProjectActive, ProjectPlanning, ProjectCompleted, ProjectOnHold, ProjectCancelled}

// Project belongs to a Company by id; the name is resolved client-side.
type Project struct {
	Meta
	Name        string        `json:"name"`
	CompanyID   int64         `json:"company_id,omitempty"`
	Status      ProjectStatus `json:"status"`
	Budget      Money         `json:"budget" gorm:"type:numeric(14,2)"`
	StartDate   string        `json:"start_date,omitempty"`
	EndDate     string        `json:"end_date,omitempty"`
	Description string        `json:"description,omitempty"`
}

func NewProject() Project { return Project{Status: ProjectStatuses[0], Budget: ZeroMoney} }

func (p Project) WithID(id int64) Project { p.ID = id; return p }

func (p Project) WithTimestamps(created, updated time.Time) Project {
	p.stamp(created, updated)
	return p
}

func (p Project) Validate() error {
	return firstErr(
		requireText("name", p.Name),
		checkEnum("status", p.Status, ProjectStatuses),
		requireNonNegative("budget", p.Budget),
		checkDate("start_date", p.StartDate, false),
		checkDate("end_date", p.EndDate, false),
		checkRange("start_date", p.StartDate, "end_date", p.EndDate),
	)
}

var ProjectSchema = Schema[Project]{
	Resource: "projects",
	Kinds:    enumStrings(ProjectStatuses),
	Kind:     func(p Project) string { return string(p.Status) },
	Date:     func(p Project) string { return p.StartDate },
	Text:     func(p Project) []string { return []string{p.Name, p.Description} },
	Compare:  func(a, b Project) int { return descending(a.StartDate, b.StartDate) },
	Columns: []Column[Project]{
		idColumn[Project](),
		{Name: "name", Value: func(p Project) string { return p.Name }},
		{Name: "company_id", Value: func(p Project) string { return formatID(p.CompanyID) }},
		{Name: "status", Value: func(p Project) string { return string(p.Status) }},
		{Name: "budget", Value: func(p Project) string { return p.Budget.String() }},
		{Name: "start_date", Value: func(p Project) string { return p.StartDate }},
		{Name: "end_date", Value: func(p Project) string { return p.EndDate }},
	},
}
