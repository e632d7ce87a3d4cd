package store

import (
	"strings"
)

type assignment struct {
	column string
	value  any
}

// set assigns value to column. Empty strings are skipped.
func set(column string, value any) assignment {
	return assignment{column: column, value: value}
}

func (a assignment) empty() bool {
	s, ok := a.value.(string)
	return ok && s == ""
}

type when struct {
	id    int64
	value any
}

// caseUpdate builds one multi-row UPDATE:
//
//	UPDATE t SET c1 = CASE id WHEN ? THEN ? ... ELSE c1 END, ... WHERE id IN (?,...)
type caseUpdate struct {
	table   string
	key     string
	ids     []int64
	columns []string
	cases   map[string][]when
}

func newCaseUpdate(table, key string) *caseUpdate {
	return &caseUpdate{table: table, key: key, cases: map[string][]when{}}
}

func (u *caseUpdate) add(id int64, assignments ...assignment) {
	u.ids = append(u.ids, id)
	for _, a := range assignments {
		if a.empty() {
			continue
		}
		if _, ok := u.cases[a.column]; !ok {
			u.columns = append(u.columns, a.column)
		}
		u.cases[a.column] = append(u.cases[a.column], when{id: id, value: a.value})
	}
}

// build renders the statement. ok is false when there is nothing to set.
func (u *caseUpdate) build() (query string, args []any, ok bool) {
	if len(u.ids) == 0 || len(u.columns) == 0 {
		return "", nil, false
	}

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(u.table)
	b.WriteString(" SET ")
	for i, col := range u.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col)
		b.WriteString(" = CASE ")
		b.WriteString(u.key)
		for _, w := range u.cases[col] {
			b.WriteString(" WHEN ? THEN ?")
			args = append(args, w.id, w.value)
		}
		b.WriteString(" ELSE ")
		b.WriteString(col)
		b.WriteString(" END")
	}

	b.WriteString(" WHERE ")
	b.WriteString(u.key)
	b.WriteString(" IN (")
	for i, id := range u.ids {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
		args = append(args, id)
	}
	b.WriteString(")")
	return b.String(), args, true
}
