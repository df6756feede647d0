package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// execCall records one statement issued through a fake querier.
type execCall struct {
	sql  string
	args []any
}

// fakeQuerier satisfies the Querier contract with per-call hooks so that
// repository helpers run without a database. Exec calls are recorded even
// when no hook is set.
type fakeQuerier struct {
	queryRowFunc func(sql string, args []any) pgx.Row
	queryFunc    func(sql string, args []any) (pgx.Rows, error)
	execFunc     func(sql string, args []any) (pgconn.CommandTag, error)

	execCalls []execCall
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	return f.queryRowFunc(sql, args)
}

func (f *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	return f.queryFunc(sql, args)
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execCalls = append(f.execCalls, execCall{sql: sql, args: args})
	if f.execFunc == nil {
		return pgconn.CommandTag{}, nil
	}
	return f.execFunc(sql, args)
}

// fakeRow adapts a scan closure to pgx.Row.
type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

// fakeRows serves canned result rows as pgx.Rows.
type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	for i := range dest {
		switch d := dest[i].(type) {
		case *string:
			*d = row[i].(string)
		case *int64:
			*d = row[i].(int64)
		case *uuid.UUID:
			*d = row[i].(uuid.UUID)
		default:
			return fmt.Errorf("fake rows: unsupported scan dest %T", dest[i])
		}
	}
	return nil
}

func (r *fakeRows) Values() ([]any, error) { return nil, nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }
