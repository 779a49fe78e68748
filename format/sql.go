package format

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // register "mysql"
	_ "github.com/mattn/go-sqlite3"    // register "sqlite3"

	"github.com/ardnew/udx/udm"
)

// SQLDrivers lists the database drivers [Query] accepts.
var SQLDrivers = []string{"mysql", "sqlite3"}

// IsSQLDriver reports whether name is one of [SQLDrivers].
func IsSQLDriver(name string) bool {
	return slices.Contains(SQLDrivers, name)
}

// Query runs a read-only query and returns the result set as an array of
// objects, one per row, with properties in column order.
func Query(ctx context.Context, driver, dsn, query string) (udm.Array, error) {
	if !IsSQLDriver(driver) {
		return nil, wrap(driver, ErrUnknownFormat,
			errors.New("valid drivers: "+strings.Join(SQLDrivers, ", ")))
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, wrap(driver, ErrQuery, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrap(driver, ErrQuery, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, wrap(driver, ErrQuery, err)
	}

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, wrap(driver, ErrQuery, err)
	}

	out := udm.Array{}

	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))

		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, wrap(driver, ErrQuery, err)
		}

		b := udm.NewBuilder()

		for i, col := range columns {
			var ct *sql.ColumnType
			if i < len(colTypes) {
				ct = colTypes[i]
			}

			b.Set(col, fromSQL(values[i], ct))
		}

		out = append(out, b.Build())
	}

	if err := rows.Err(); err != nil {
		return nil, wrap(driver, ErrQuery, err)
	}

	return out, nil
}

// fromSQL maps a scanned column value to UDM. Drivers return text columns
// as []byte; numeric declared types are parsed back into numbers.
func fromSQL(v any, ct *sql.ColumnType) udm.Value {
	switch x := v.(type) {
	case nil:
		return udm.Null{}
	case time.Time:
		return udm.String(x.Format(time.RFC3339Nano))
	case []byte:
		if ct != nil {
			switch decl := strings.ToUpper(ct.DatabaseTypeName()); {
			case strings.Contains(decl, "INT"),
				strings.Contains(decl, "DEC"),
				strings.Contains(decl, "NUM"),
				strings.Contains(decl, "REAL"),
				strings.Contains(decl, "FLOAT"),
				strings.Contains(decl, "DOUBLE"):
				if f, err := strconv.ParseFloat(string(x), 64); err == nil {
					return udm.Number(f)
				}
			}
		}

		return udm.String(x)
	}

	return udm.FromNative(v)
}
