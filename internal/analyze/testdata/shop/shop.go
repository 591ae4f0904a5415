// Package shop holds sample classes for the analyzer tests.
package shop

// Order has declarations in the default and "create" subsets.
type Order struct {
	_     struct{} `validate.create:"order_check,priority=2"`
	ID    int      `data:"id" validate:"scalar,type=int"`
	Total float64  `data:"total" data.create:"total" strategy:"scalar,type=float64"`
	note  string   `data:"note,nullable"`
}

func (o *Order) GetNote() string { return o.note }

func (o *Order) SetNote(note string, _ ...string) { o.note = note }

// Vault binds its accessors to unexported methods.
type Vault struct {
	secret string `data:"secret,getter=reveal,setter=hide"`
}

func (v *Vault) reveal() string { return v.secret }

func (v *Vault) hide(s string) { v.secret = s }

// Status is not a struct and is skipped.
type Status int

// Page is generic and is skipped.
type Page[T any] struct {
	Items []T `data:"items"`
}
