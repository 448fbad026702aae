// Package querybuilder assembles the small set of postgres statements the
// repositories issue, numbering placeholders in write order.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// bindings collects statement arguments and hands out $n placeholders.
type bindings struct {
	values []any
}

func (b *bindings) bind(v any) string {
	b.values = append(b.values, v)
	return "$" + strconv.Itoa(len(b.values))
}

// expand binds one value per '?' in expr. Surplus '?' are kept verbatim.
func (b *bindings) expand(expr string, values []any) string {
	if len(values) == 0 {
		return expr
	}

	var out strings.Builder
	for i := 0; i < len(expr); i++ {
		if expr[i] != '?' || len(values) == 0 {
			out.WriteByte(expr[i])
			continue
		}
		out.WriteString(b.bind(values[0]))
		values = values[1:]
	}
	return out.String()
}

type Condition interface {
	write(buf *strings.Builder, b *bindings)
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) write(buf *strings.Builder, b *bindings) {
	buf.WriteString(c.column + " = " + b.bind(c.value))
}

type nullCondition struct {
	column string
	negate bool
}

func IsNull(column string) Condition {
	return nullCondition{column: column}
}

func IsNotNull(column string) Condition {
	return nullCondition{column: column, negate: true}
}

func (c nullCondition) write(buf *strings.Builder, _ *bindings) {
	if c.negate {
		buf.WriteString(c.column + " IS NOT NULL")
		return
	}
	buf.WriteString(c.column + " IS NULL")
}

func writeWhere(buf *strings.Builder, conditions []Condition, b *bindings) {
	for i, c := range conditions {
		if i == 0 {
			buf.WriteString(" WHERE ")
		} else {
			buf.WriteString(" AND ")
		}
		c.write(buf, b)
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (s *SelectBuilder) From(table string) *SelectBuilder {
	s.table = table
	return s
}

func (s *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	s.where = append(s.where, conditions...)
	return s
}

func (s *SelectBuilder) OrderBy(terms ...string) *SelectBuilder {
	s.orderBy = append(s.orderBy, terms...)
	return s
}

func (s *SelectBuilder) ToSQL() (string, []any, error) {
	if len(s.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(s.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var (
		buf strings.Builder
		b   bindings
	)
	buf.WriteString("SELECT " + strings.Join(s.columns, ", ") + " FROM " + s.table)
	writeWhere(&buf, s.where, &b)
	if len(s.orderBy) > 0 {
		buf.WriteString(" ORDER BY " + strings.Join(s.orderBy, ", "))
	}
	return buf.String(), b.values, nil
}

// assignment is one SET entry; expr holds '?' markers for values.
type assignment struct {
	column string
	expr   string
	values []any
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (u *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	return u.SetExpr(column, "?", value)
}

func (u *UpdateBuilder) SetExpr(column, expr string, values ...any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, expr: expr, values: values})
	return u
}

// Increment adds delta to a numeric column in place.
func (u *UpdateBuilder) Increment(column string, delta any) *UpdateBuilder {
	return u.SetExpr(column, column+" + ?", delta)
}

func (u *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	u.where = append(u.where, conditions...)
	return u
}

func (u *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(u.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(u.sets) == 0 {
		return "", nil, fmt.Errorf("update needs at least one column")
	}

	var (
		buf strings.Builder
		b   bindings
	)
	buf.WriteString("UPDATE " + u.table + " SET ")
	for i, set := range u.sets {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(set.column + " = " + b.expand(set.expr, set.values))
	}
	writeWhere(&buf, u.where, &b)
	return buf.String(), b.values, nil
}
