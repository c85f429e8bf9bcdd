package repository

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
)

// sqliteDriverName is go-sqlite3 with the casefold() SQL function
// registered on every connection.
const sqliteDriverName = "sqlite3_todo"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", foldCase, true)
		},
	})
}

// foldCase applies Unicode full case folding. SQLite's lower() only
// folds ASCII.
func foldCase(s string) string {
	// A Caser keeps state and is not safe for concurrent use.
	return cases.Fold().String(s)
}
