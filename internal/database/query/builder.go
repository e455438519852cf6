// Campusrec - Campus Event Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campusrec

// Package query provides SQL query building utilities for the database package.
// Placeholders are PostgreSQL positional parameters ($1, $2, ...).
package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddClause("e.is_cancelled = FALSE")
//	wb.AddMinTime("e.start_at", minDate)
//	wb.AddExcludeIDs("e.event_id", []int{4, 7})
//	where, args := wb.Build()
//	// WHERE e.is_cancelled = FALSE AND e.start_at >= $1 AND NOT (e.event_id = ANY($2))
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{}
}

// AddClause adds a raw clause. Each "?" in clause is replaced by the next
// positional parameter and bound to the matching arg.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	var b strings.Builder
	next := 0
	for _, r := range clause {
		if r == '?' && next < len(args) {
			wb.args = append(wb.args, args[next])
			next++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(len(wb.args)))
			continue
		}
		b.WriteRune(r)
	}
	wb.clauses = append(wb.clauses, b.String())
	return wb
}

// AddMinTime adds "column >= t". A zero t is skipped.
func (wb *WhereBuilder) AddMinTime(column string, t time.Time) *WhereBuilder {
	if t.IsZero() {
		return wb
	}
	return wb.AddClause(column+" >= ?", t.UTC())
}

// AddMaxTime adds "column <= t". A zero t is skipped.
func (wb *WhereBuilder) AddMaxTime(column string, t time.Time) *WhereBuilder {
	if t.IsZero() {
		return wb
	}
	return wb.AddClause(column+" <= ?", t.UTC())
}

// AddExcludeIDs adds "NOT (column = ANY(array))". An empty list is skipped.
func (wb *WhereBuilder) AddExcludeIDs(column string, ids []int) *WhereBuilder {
	if len(ids) == 0 {
		return wb
	}
	arr := make([]int64, len(ids))
	for i, id := range ids {
		arr[i] = int64(id)
	}
	return wb.AddClause("NOT ("+column+" = ANY(?))", pq.Array(arr))
}

// Build returns the WHERE clause and its arguments. It returns "" when no
// clauses were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(wb.clauses, " AND "), wb.args
}

// Len returns the number of bound arguments.
func (wb *WhereBuilder) Len() int {
	return len(wb.args)
}
