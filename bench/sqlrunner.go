package bench

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	// postgres driver
	_ "github.com/jackc/pgx/v4/stdlib"
	// mysql driver
	_ "github.com/go-sql-driver/mysql"
)

// OpenDB opens a database/sql handle for the SQL runner. Supported
// types are "postgres" (pgx stdlib) and "mysql".
func OpenDB(dbType, dsn string) (*sql.DB, error) {
	var driver string

	switch dbType {
	case "postgres", "":
		driver = "pgx"
	case "mysql":
		driver = "mysql"
	default:
		return nil, errors.Errorf("unsupported database type: %s", dbType)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	return db, nil
}

// RunSQL executes the suite against an external SQL database holding
// its own hits table, timing the same statements the embedded runner
// does.
func RunSQL(ctx context.Context, db *sql.DB, target string, queries []Query,
	opt Opts, progress func(Event)) (*Report, error) {

	opt.setDefaults()

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "pinging database")
	}

	rep := newReport(target)

	for _, q := range queries {
		qr, err := runOne(ctx, q, opt, progress, func(c context.Context) (int, error) {
			return execSQL(c, db, q.SQL)
		})
		if err != nil {
			return nil, err
		}
		rep.Results = append(rep.Results, qr)
	}

	rep.Elapsed = time.Since(rep.Started)
	return rep, nil
}

// execSQL runs one statement and drains the rows; the row data itself
// is discarded, only the count matters.
func execSQL(ctx context.Context, db *sql.DB, query string) (int, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, err
	}

	vals := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	var n int
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}
