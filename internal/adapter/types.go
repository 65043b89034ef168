package adapter

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/resdesk/internal/constants"
)

// Record is a normalized resource record. It always uses "id" and never
// carries the server's "_id".
type Record map[string]any

// ID returns the record identity as a string
func (r Record) ID() string {
	v, ok := r[constants.IdentityField]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Decode converts a record into a typed value through its JSON form
func Decode[T any](r Record) (T, error) {
	var out T
	raw, err := json.Marshal(r)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode record: %w", err)
	}
	return out, nil
}

// Order is a sort direction
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Sorter orders a list by one field
type Sorter struct {
	Field string
	Order Order
}

// Filter narrows a list. Only the "eq" operator is supported.
type Filter struct {
	Field    string
	Operator string
	Value    any
}

// Eq builds an equality filter
func Eq(field string, value any) Filter {
	return Filter{Field: field, Operator: constants.FilterOperatorEquals, Value: value}
}

// Pagination selects a page. Zero values are omitted from the query.
type Pagination struct {
	Page     int
	PageSize int
}

// ListParams are the inputs of a list call
type ListParams struct {
	Pagination Pagination
	Filters    []Filter
	Sorters    []Sorter
}

// ListResult is one page of records plus the server-side total, when the
// server reported one
type ListResult struct {
	Records  []Record
	Total    int
	HasTotal bool
}
