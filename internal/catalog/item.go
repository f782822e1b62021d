package catalog

import (
	"errors"
	"fmt"
)

type Item struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Weight float64 `json:"weight"`
}

type DeleteResult struct {
	Result  bool   `json:"result"`
	Message string `json:"message"`
}

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
)

// Error is a client-facing failure of an item operation.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrNotJSON  = &Error{Kind: KindValidation, Message: "Request body must be JSON"}
	ErrNotFound = &Error{Kind: KindNotFound, Message: "Item not found"}
)

// KindOf returns the Kind of a catalog error, or 0 for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func indexOf(items []Item, id int64) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
