package core

import (
	"cmp"
	"strings"
	"time"
)

type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

var CategoryTypes = []CategoryType{CategoryIncome, CategoryExpense}

type Category struct {
	Meta
	Name        string       `json:"name"`
	Type        CategoryType `json:"type"`
	Color       string       `json:"color,omitempty"`
	Description string       `json:"description,omitempty"`
}

func NewCategory() Category { return Category{Type: CategoryTypes[0]} }

func (c Category) WithID(id int64) Category { c.ID = id; return c }

func (c Category) WithTimestamps(created, updated time.Time) Category {
	c.stamp(created, updated)
	return c
}

func (c Category) Validate() error {
	return firstErr(
		requireText("name", c.Name),
		maxLen("name", c.Name, 100),
		checkEnum("type", c.Type, CategoryTypes),
	)
}

var CategorySchema = Schema[Category]{
	Resource: "categories",
	Kinds:    enumStrings(CategoryTypes),
	Kind:     func(c Category) string { return string(c.Type) },
	Text:     func(c Category) []string { return []string{c.Name, c.Description} },
	Compare:  func(a, b Category) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
	Columns: []Column[Category]{
		idColumn[Category](),
		{Name: "name", Value: func(c Category) string { return c.Name }},
		{Name: "type", Value: func(c Category) string { return string(c.Type) }},
		{Name: "color", Value: func(c Category) string { return c.Color }},
		{Name: "description", Value: func(c Category) string { return c.Description }},
	},
}
