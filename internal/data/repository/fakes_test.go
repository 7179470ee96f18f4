package repository

import (
	"context"
	"errors"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type execCall struct {
	sql  string
	args []any
}

// fakeDB records statements and returns canned results.
type fakeDB struct {
	execTag pgconn.CommandTag
	execErr error
	row     pgx.Row
	execs   []execCall
	queries []execCall
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("fakeDB: Query not supported")
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, execCall{sql: sql, args: args})
	return f.row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return f.execTag, f.execErr
}

func (f *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("fakeDB: Begin not supported")
}

func (f *fakeDB) Ping(context.Context) error { return nil }

func (f *fakeDB) Close() {}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("fakeRow: column count mismatch")
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}
