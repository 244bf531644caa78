// Package dbtable builds queries which read a table.
package dbtable

import (
	"fmt"
	"go/constant"
	"strconv"
	"strings"

	"github.com/cockroachdb/cockroachdb-parser/pkg/sql/sem/tree"
	"github.com/cockroachdb/dataexpect/dbconn"
	"github.com/cockroachdb/errors"
)

// Name is a table name with an optional schema.
type Name struct {
	Schema tree.Name
	Table  tree.Name
}

// ParseName parses "table" or "schema.table".
func ParseName(s string) (Name, error) {
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if p == "" {
			return Name{}, errors.Newf("invalid table name %q", s)
		}
	}
	switch len(parts) {
	case 1:
		return Name{Table: tree.Name(parts[0])}, nil
	case 2:
		return Name{Schema: tree.Name(parts[0]), Table: tree.Name(parts[1])}, nil
	default:
		return Name{}, errors.Newf("invalid table name %q: expected [schema.]table", s)
	}
}

func (n Name) MakeTableName() tree.TableName {
	if n.Schema == "" {
		return tree.MakeUnqualifiedTableName(n.Table)
	}
	return tree.MakeTableNameFromPrefix(tree.ObjectNamePrefix{
		SchemaName:     n.Schema,
		ExplicitSchema: true,
	}, n.Table)
}

func (n Name) String() string {
	if n.Schema == "" {
		return string(n.Table)
	}
	return fmt.Sprintf("%s.%s", n.Schema, n.Table)
}

// SelectOpts shape a table query.
type SelectOpts struct {
	OrderBy string
	Desc    bool
	// Limit caps the number of rows returned if positive.
	Limit int
}

// SelectQuery returns a query selecting every column of the table in the
// given dialect.
func (n Name) SelectQuery(dialect string, opts SelectOpts) (string, error) {
	switch dialect {
	case dbconn.DialectPostgreSQL, dbconn.DialectCockroachDB:
		return n.pgSelectQuery(opts), nil
	case dbconn.DialectMySQL:
		return n.genericSelectQuery(quoteMySQLIdent, opts), nil
	case dbconn.DialectSQLite:
		return n.genericSelectQuery(quoteANSIIdent, opts), nil
	case dbconn.DialectSQLServer:
		return n.mssqlSelectQuery(opts), nil
	default:
		return "", errors.Newf("cannot build a table query for dialect %q", dialect)
	}
}

func (n Name) pgSelectQuery(opts SelectOpts) string {
	tn := n.MakeTableName()
	stmt := &tree.Select{
		Select: &tree.SelectClause{
			Exprs: tree.SelectExprs{tree.StarSelectExpr()},
			From: tree.From{
				Tables: tree.TableExprs{&tn},
			},
		},
	}
	if opts.OrderBy != "" {
		order := &tree.Order{Expr: tree.NewUnresolvedName(opts.OrderBy)}
		if opts.Desc {
			order.Direction = tree.Descending
		}
		stmt.OrderBy = tree.OrderBy{order}
	}
	if opts.Limit > 0 {
		stmt.Limit = &tree.Limit{Count: tree.NewNumVal(constant.MakeUint64(uint64(opts.Limit)), "", false)}
	}
	f := tree.NewFmtCtx(tree.FmtParsableNumerics)
	f.FormatNode(stmt)
	return f.CloseAndGetString()
}

func (n Name) qualified(quote func(string) string) string {
	if n.Schema == "" {
		return quote(string(n.Table))
	}
	return quote(string(n.Schema)) + "." + quote(string(n.Table))
}

func orderByClause(quote func(string) string, opts SelectOpts) string {
	if opts.OrderBy == "" {
		return ""
	}
	s := " ORDER BY " + quote(opts.OrderBy)
	if opts.Desc {
		s += " DESC"
	}
	return s
}

func (n Name) genericSelectQuery(quote func(string) string, opts SelectOpts) string {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(n.qualified(quote))
	sb.WriteString(orderByClause(quote, opts))
	if opts.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(opts.Limit))
	}
	return sb.String()
}

func (n Name) mssqlSelectQuery(opts SelectOpts) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if opts.Limit > 0 {
		fmt.Fprintf(&sb, "TOP (%d) ", opts.Limit)
	}
	sb.WriteString("* FROM ")
	sb.WriteString(n.qualified(quoteMSSQLIdent))
	sb.WriteString(orderByClause(quoteMSSQLIdent, opts))
	return sb.String()
}

func quoteMySQLIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func quoteANSIIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteMSSQLIdent(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}
