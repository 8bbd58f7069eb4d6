package domain

import (
	"fmt"
	"strconv"
)

// Filter operators accepted by the conference query composer.
const (
	OpEQ  = "="
	OpNE  = "!="
	OpGT  = ">"
	OpGTE = ">="
	OpLT  = "<"
	OpLTE = "<="
)

// Filter is one caller-supplied predicate, values still in text form.
type Filter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Condition is a validated predicate with its value coerced to the field's
// native type, ready to compile to the store's query form.
type Condition struct {
	Field    string
	Operator string
	Value    any
}

// ConferenceQuery is a validated, store-independent conference query:
// conjunctive conditions plus the fixed ordering (inequality field first when
// present, then name as the tiebreaker).
type ConferenceQuery struct {
	Conditions []Condition
	OrderBy    []string
}

// Conference fields accepted in filters, and which of them are numeric.
var (
	conferenceFilterFields = map[string]bool{
		"name":           true,
		"city":           true,
		"topic":          true,
		"month":          true,
		"maxAttendees":   true,
		"seatsAvailable": true,
	}
	numericFilterFields = map[string]bool{
		"month":        true,
		"maxAttendees": true,
	}
	inequalityOperators = map[string]bool{
		OpNE: true, OpGT: true, OpGTE: true, OpLT: true, OpLTE: true,
	}
	filterOperators = map[string]bool{
		OpEQ: true, OpNE: true, OpGT: true, OpGTE: true, OpLT: true, OpLTE: true,
	}
)

// BuildConferenceQuery validates the dynamic predicates and composes the
// query. The store requires the primary sort order to match the sole
// inequality field, so at most one predicate may use an inequality operator
// on a field other than name, and that field must be the requested
// inequalityField. Violations are reported before any store access.
func BuildConferenceQuery(inequalityField string, filters []Filter) (*ConferenceQuery, error) {
	q := &ConferenceQuery{}

	inequalitySeen := ""
	for _, f := range filters {
		if !conferenceFilterFields[f.Field] {
			return nil, fmt.Errorf("unknown filter field %q: %w", f.Field, ErrInvalidInput)
		}
		if !filterOperators[f.Operator] {
			return nil, fmt.Errorf("unknown filter operator %q: %w", f.Operator, ErrInvalidInput)
		}

		var value any = f.Value
		if numericFilterFields[f.Field] {
			n, err := strconv.Atoi(f.Value)
			if err != nil {
				return nil, fmt.Errorf("non-numeric value %q for field %q: %w", f.Value, f.Field, ErrInvalidInput)
			}
			value = n
		}

		if inequalityOperators[f.Operator] && f.Field != "name" {
			if inequalitySeen != "" && inequalitySeen != f.Field {
				return nil, fmt.Errorf("inequality filter on %q conflicts with %q: %w", f.Field, inequalitySeen, ErrInvalidInput)
			}
			inequalitySeen = f.Field
		}

		q.Conditions = append(q.Conditions, Condition{Field: f.Field, Operator: f.Operator, Value: value})
	}

	if inequalitySeen != "" && inequalitySeen != inequalityField {
		return nil, fmt.Errorf("inequality filter on %q requires sorting by it, got %q: %w", inequalitySeen, inequalityField, ErrInvalidInput)
	}
	if inequalityField != "" {
		if !conferenceFilterFields[inequalityField] {
			return nil, fmt.Errorf("unknown sort field %q: %w", inequalityField, ErrInvalidInput)
		}
		// topic is list-valued: filterable by membership, but not orderable,
		// so it cannot carry an inequality either.
		if inequalityField == "topic" {
			return nil, fmt.Errorf("cannot sort by list-valued field %q: %w", inequalityField, ErrInvalidInput)
		}
		q.OrderBy = append(q.OrderBy, inequalityField)
	}
	if inequalityField != "name" {
		q.OrderBy = append(q.OrderBy, "name")
	}
	return q, nil
}
