package core

import (
	"cmp"
	"net/mail"
	"strings"
	"time"
)

type CompanyStatus string

const (
	CompanyActive   CompanyStatus = "active"
	CompanyInactive CompanyStatus = "inactive"
)

var CompanyStatuses = []CompanyStatus{CompanyActive, CompanyInactive}

type Company struct {
	Meta
	Name               string        `json:"name"`
	RegistrationNumber string        `json:"registration_number,omitempty"`
	Industry           string        `json:"industry,omitempty"`
	Email              string        `json:"email,omitempty"`
	Phone              string        `json:"phone,omitempty"`
	Address            string        `json:"address,omitempty"`
	Status             CompanyStatus `json:"status"`
}

func NewCompany() Company { return Company{Status: CompanyStatuses[0]} }

func (c Company) WithID(id int64) Company { c.ID = id; return c }

func (c Company) WithTimestamps(created, updated time.Time) Company {
	c.stamp(created, updated)
	return c
}

func (c Company) Validate() error {
	if err := firstErr(
		requireText("name", c.Name),
		checkEnum("status", c.Status, CompanyStatuses),
	); err != nil {
		return err
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return &ValidationError{Field: "email", Reason: "is not a valid address"}
		}
	}
	return nil
}

var CompanySchema = Schema[Company]{
	Resource: "companies",
	Kinds:    enumStrings(CompanyStatuses),
	Kind:     func(c Company) string { return string(c.Status) },
	Text:     func(c Company) []string { return []string{c.Name, c.Industry, c.RegistrationNumber, c.Email} },
	Compare:  func(a, b Company) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
	Columns: []Column[Company]{
		idColumn[Company](),
		{Name: "name", Value: func(c Company) string { return c.Name }},
		{Name: "registration_number", Value: func(c Company) string { return c.RegistrationNumber }},
		{Name: "industry", Value: func(c Company) string { return c.Industry }},
		{Name: "email", Value: func(c Company) string { return c.Email }},
		{Name: "status", Value: func(c Company) string { return string(c.Status) }},
	},
}
