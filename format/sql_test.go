package format

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ardnew/udx/udm"
)

func TestIsSQLDriver(t *testing.T) {
	for _, d := range []string{"sqlite3", "mysql"} {
		if !IsSQLDriver(d) {
			t.Errorf("expected %s to be a driver", d)
		}
	}

	if IsSQLDriver("json") {
		t.Error("json is not a driver")
	}
}

func TestQuery_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	for _, stmt := range []string{
		`CREATE TABLE items (id INTEGER, name TEXT, price DECIMAL(6,2), note TEXT)`,
		`INSERT INTO items VALUES (1, 'apple', 1.25, NULL), (2, 'pear', 3, 'ripe')`,
	} {
		if _, err := db.ExecContext(t.Context(), stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}

	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rows, err := Query(t.Context(), "sqlite3", dsn, `SELECT id, name, price, note FROM items ORDER BY id`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	want := udm.Array{
		udm.NewBuilder().
			Set("id", udm.Number(1)).
			Set("name", udm.String("apple")).
			Set("price", udm.Number(1.25)).
			Set("note", udm.Null{}).
			Build(),
		udm.NewBuilder().
			Set("id", udm.Number(2)).
			Set("name", udm.String("pear")).
			Set("price", udm.Number(3)).
			Set("note", udm.String("ripe")).
			Build(),
	}

	if !udm.Equal(rows, want) {
		t.Errorf("got %v, want %v", rows, want)
	}
}

func TestQuery_Errors(t *testing.T) {
	_, err := Query(t.Context(), "postgres", "", "SELECT 1")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}

	dsn := filepath.Join(t.TempDir(), "empty.db")

	_, err = Query(t.Context(), "sqlite3", dsn, "SELECT * FROM missing")
	if !errors.Is(err, ErrQuery) {
		t.Errorf("expected ErrQuery, got %v", err)
	}
}
