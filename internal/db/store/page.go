package store

import (
	"strings"

	"gorm.io/gorm"
)

// Page defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page selects a window of a listing. Number starts at 1.
type Page struct {
	Number int
	Size   int
}

// Normalize applies defaults and bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}

	switch {
	case p.Size < 1:
		p.Size = DefaultPageSize
	case p.Size > MaxPageSize:
		p.Size = MaxPageSize
	}

	return p
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Size)
}

// search adds an OR'ed LIKE condition over columns.
func search(db *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return db
	}

	like := "%" + term + "%"
	conds := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))

	for _, c := range columns {
		conds = append(conds, c+" LIKE ?")
		args = append(args, like)
	}

	return db.Where("("+strings.Join(conds, " OR ")+")", args...)
}
