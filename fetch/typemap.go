package fetch

import (
	"strings"

	"github.com/cockroachdb/dataexpect/dataset"
)

// normalizeTypeName upper-cases a database type name and strips any length,
// precision or signedness decoration, e.g. "unsigned bigint" -> "BIGINT" and
// "varchar(20)" -> "VARCHAR".
func normalizeTypeName(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if idx := strings.IndexByte(name, '('); idx >= 0 {
		name = strings.TrimSpace(name[:idx])
	}
	name = strings.TrimPrefix(name, "UNSIGNED ")
	name = strings.TrimSuffix(name, " UNSIGNED")
	return name
}

// typeForDatabaseTypeName maps a normalized MySQL, SQL Server or SQLite type
// name to a value type. The second return is false when the name carries no
// type information.
func typeForDatabaseTypeName(name string) (dataset.Type, bool) {
	switch name {
	case "":
		return dataset.String, false
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "YEAR":
		return dataset.Integer, true
	case "DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY", "FLOAT", "REAL", "DOUBLE", "DOUBLE PRECISION":
		return dataset.Float, true
	case "BIT", "BOOL", "BOOLEAN":
		return dataset.Boolean, true
	case "DATE", "DATETIME", "DATETIME2", "SMALLDATETIME", "DATETIMEOFFSET", "TIMESTAMP":
		return dataset.Timestamp, true
	case "CHAR", "NCHAR", "VARCHAR", "NVARCHAR", "TEXT", "NTEXT", "TINYTEXT", "MEDIUMTEXT",
		"LONGTEXT", "UNIQUEIDENTIFIER", "JSON", "XML", "ENUM", "SET", "TIME", "CLOB":
		return dataset.String, true
	}
	// SQLite declared types follow its column affinity rules.
	switch {
	case strings.Contains(name, "INT"):
		return dataset.Integer, true
	case strings.Contains(name, "CHAR"), strings.Contains(name, "CLOB"), strings.Contains(name, "TEXT"):
		return dataset.String, true
	case strings.Contains(name, "REAL"), strings.Contains(name, "FLOA"), strings.Contains(name, "DOUB"):
		return dataset.Float, true
	}
	return dataset.String, true
}
