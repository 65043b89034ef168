package adapter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/julianstephens/resdesk/internal/constants"
	reserrors "github.com/julianstephens/resdesk/internal/errors"
)

// reserved query keys that a filter must not overwrite
var reservedKeys = map[string]bool{"page": true, "limit": true, "sort": true}

// BuildListQuery turns list params into the API's query string values.
// Without sorters the list is ordered by -updatedAt.
func BuildListQuery(params ListParams) (url.Values, error) {
	q := url.Values{}

	if params.Pagination.Page > 0 {
		q.Set("page", strconv.Itoa(params.Pagination.Page))
	}
	if params.Pagination.PageSize > 0 {
		q.Set("limit", strconv.Itoa(params.Pagination.PageSize))
	}

	for _, f := range params.Filters {
		if f.Field == "" {
			return nil, reserrors.NewValidationError("filter", "field is required")
		}
		op := f.Operator
		if op == "" {
			op = constants.FilterOperatorEquals
		}
		if op != constants.FilterOperatorEquals {
			return nil, reserrors.NewValidationError("filter", "operator %q on %q is not supported", op, f.Field)
		}
		if reservedKeys[f.Field] {
			return nil, reserrors.NewValidationError("filter", "cannot filter on reserved key %q", f.Field)
		}
		q.Set(f.Field, formatValue(f.Value))
	}

	sorters := params.Sorters
	if len(sorters) == 0 {
		sorters = []Sorter{{Field: constants.DefaultSortField, Order: Desc}}
	}
	sort, err := sortParam(sorters)
	if err != nil {
		return nil, err
	}
	q.Set("sort", sort)

	return q, nil
}

func sortParam(sorters []Sorter) (string, error) {
	parts := make([]string, 0, len(sorters))
	for _, s := range sorters {
		if s.Field == "" {
			return "", reserrors.NewValidationError("sort", "field is required")
		}
		switch s.Order {
		case Desc:
			parts = append(parts, "-"+s.Field)
		case Asc, "":
			parts = append(parts, s.Field)
		default:
			return "", reserrors.NewValidationError("sort", "unknown order %q", s.Order)
		}
	}
	return strings.Join(parts, ","), nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
