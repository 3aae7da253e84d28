package repository

import (
	"reflect"
	"slices"
	"strings"
)

// column is one selectable field of a model. A field tagged with table reads
// from a joined table and is not inserted. A column tag selects a differently
// named source column under the db name.
type column struct {
	name   string
	table  string
	source string
	own    bool
}

type columns []column

func columnsOf[T any](table string) columns {
	return collect(reflect.TypeFor[T](), table)
}

func collect(t reflect.Type, table string) columns {
	var cols columns

	for i := range t.NumField() {
		field := t.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			cols = append(cols, collect(field.Type, table)...)

			continue
		}

		name := field.Tag.Get("db")
		if name == "" || name == "-" {
			continue
		}

		col := column{name: name, table: table, source: name, own: true}

		if joined := field.Tag.Get("table"); joined != "" && joined != table {
			col.table = joined
			col.own = false
		}

		if source := field.Tag.Get("column"); source != "" {
			col.source = source
		}

		cols = append(cols, col)
	}

	return cols
}

func (c column) qualified() string {
	return c.table + "." + c.source
}

func (c column) selectExpr() string {
	if c.source != c.name {
		return c.qualified() + " AS " + c.name
	}

	return c.qualified()
}

// insertable lists the db names written by an insert.
func (cols columns) insertable() []string {
	names := make([]string, 0, len(cols))

	for _, c := range cols {
		if c.own {
			names = append(names, c.name)
		}
	}

	return names
}

// selectList renders the select expressions, restricted to only when given.
func (cols columns) selectList(only []string) string {
	exprs := make([]string, 0, len(cols))

	for _, c := range cols {
		if len(only) > 0 && !slices.Contains(only, c.name) {
			continue
		}

		exprs = append(exprs, c.selectExpr())
	}

	return strings.Join(exprs, ", ")
}

func (cols columns) find(name string) (column, bool) {
	if name == "" {
		return column{}, false
	}

	i := slices.IndexFunc(cols, func(c column) bool { return c.name == name })
	if i < 0 {
		return column{}, false
	}

	return cols[i], true
}
