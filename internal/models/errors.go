package models

import "fmt"

// DataError reports invalid or missing input: absent columns, no valid
// rows after filtering, or an unparseable dataset.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string { return "data error: " + e.Reason }

// EmptyResultError reports a filter (typically a keyword match) that
// produced no rows. Callers surface it with data-quality guidance.
type EmptyResultError struct {
	Keyword string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no products match keyword %q", e.Keyword)
}

// InsufficientDataError reports fewer entities than an algorithm needs,
// e.g. fewer than 2 customers for clustering.
type InsufficientDataError struct {
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need at least %d entities, got %d", e.Need, e.Got)
}

// InfeasibleError reports that the optimizer found no feasible point
// under the given budget and bounds. Callers surface it with
// budget-adjustment guidance, distinct from data errors.
type InfeasibleError struct {
	Reason string
}

func (e *InfeasibleError) Error() string { return "infeasible: " + e.Reason }

// UnknownModelError reports a forecast tier outside the fixed escalation
// list.
type UnknownModelError struct {
	Model string
}

func (e *UnknownModelError) Error() string { return "unknown forecast model: " + e.Model }
