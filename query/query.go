// Package query turns untyped listing parameters into a validated, store-neutral
// filter and sort specification. Only keys present in an allow-list are accepted.
package query

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/thucvinguyen/coder-management/apperrors"

	"golang.org/x/exp/maps"
)

type Operator int

const (
	// Equals matches the field value exactly.
	Equals Operator = iota
	// ContainsFold matches a case-insensitive substring. Value holds a quoted regular expression.
	ContainsFold
)

type Filter struct {
	Field    string
	Operator Operator
	Value    string
}

type SortDirection int

const (
	Ascending  SortDirection = 1
	Descending SortDirection = -1
)

type Sort struct {
	Field     string
	Direction SortDirection
}

// Spec is the resolved form of a listing request.
type Spec struct {
	Filters []Filter
	Sort    []Sort
}

func (s Spec) IsZero() bool {
	return len(s.Filters) == 0 && len(s.Sort) == 0
}

// rule applies one allowed key to a spec.
type rule func(spec *Spec, field, raw string) error

func equals(spec *Spec, field, raw string) error {
	spec.Filters = append(spec.Filters, Filter{Field: field, Operator: Equals, Value: raw})
	return nil
}

func containsFold(spec *Spec, field, raw string) error {
	spec.Filters = append(spec.Filters, Filter{Field: field, Operator: ContainsFold, Value: regexp.QuoteMeta(raw)})
	return nil
}

func sortBy(spec *Spec, field, raw string) error {
	direction, err := ParseDirection(raw)
	if err != nil {
		return apperrors.NewValidationError("invalid sort direction for " + field).WithContext("value", raw)
	}
	spec.Sort = append(spec.Sort, Sort{Field: field, Direction: direction})
	return nil
}

var taskRules = map[string]rule{
	"name":      containsFold,
	"status":    equals,
	"createdAt": sortBy,
	"updatedAt": sortBy,
}

var userRules = map[string]rule{
	"name": equals,
	"role": equals,
}

// ParseDirection accepts 1 or -1.
func ParseDirection(raw string) (SortDirection, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	switch SortDirection(n) {
	case Ascending, Descending:
		return SortDirection(n), nil
	}
	return 0, strconv.ErrRange
}

// ResolveTasks accepts name, status, createdAt and updatedAt.
func ResolveTasks(values url.Values) (Spec, error) {
	return resolve(taskRules, values)
}

// ResolveUsers accepts name and role.
func ResolveUsers(values url.Values) (Spec, error) {
	return resolve(userRules, values)
}

// NameContains builds the case-insensitive substring filter used for name search.
func NameContains(fragment string) Spec {
	return Spec{Filters: []Filter{{Field: "name", Operator: ContainsFold, Value: regexp.QuoteMeta(fragment)}}}
}

func resolve(rules map[string]rule, values url.Values) (Spec, error) {
	keys := maps.Keys(values)
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := rules[key]; !ok {
			allowed := maps.Keys(rules)
			sort.Strings(allowed)
			return Spec{}, apperrors.NewValidationError("queries not allowed").
				WithContext("key", key).
				WithContext("allowed", allowed)
		}
	}

	var spec Spec
	for _, key := range keys {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		if err := rules[key](&spec, key, raw); err != nil {
			return Spec{}, err
		}
	}
	return spec, nil
}
