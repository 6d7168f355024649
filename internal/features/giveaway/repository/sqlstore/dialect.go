package sqlstore

import (
	"strconv"
	"strings"
)

type Dialect int

const (
	DialectPostgres Dialect = iota
	// DialectSQLite expects a *sql.DB limited to one open connection, which
	// serializes transactions in place of row locks.
	DialectSQLite
)

func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	case DialectSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// rebind rewrites ? placeholders to $n for postgres.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) lockRow() string {
	if d == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}
