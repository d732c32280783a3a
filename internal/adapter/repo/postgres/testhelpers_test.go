package postgres_test

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// rowStub implements pgx.Row by copying vals into the scan targets.
type rowStub struct {
	vals []any
	err  error
}

func (r rowStub) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.vals)
}

func assign(dest []any, vals []any) error {
	if len(dest) != len(vals) {
		return errors.New("scan: column count mismatch")
	}
	for i := range dest {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(vals[i]))
	}
	return nil
}

// rowsStub implements the parts of pgx.Rows the repos use.
type rowsStub struct {
	pgx.Rows
	data   [][]any
	i      int
	err    error
	closed bool
}

func (r *rowsStub) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *rowsStub) Scan(dest ...any) error { return assign(dest, r.data[r.i-1]) }
func (r *rowsStub) Err() error             { return r.err }
func (r *rowsStub) Close()                 { r.closed = true }

type call struct {
	sql  string
	args []any
}

// poolStub implements postgres.PgxPool for tests and records every statement.
type poolStub struct {
	execErr   map[int]error // by exec call index, across pool and tx
	execTags  map[int]pgconn.CommandTag
	row       rowStub
	rows      []*rowsStub
	queryErr  error
	beginErr  error
	commitErr error

	calls      []call
	execs      int
	queries    int
	committed  bool
	rolledBack bool
}

func (p *poolStub) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.calls = append(p.calls, call{sql: sql, args: args})
	idx := p.execs
	p.execs++
	if err := p.execErr[idx]; err != nil {
		return pgconn.CommandTag{}, err
	}
	if tag, ok := p.execTags[idx]; ok {
		return tag, nil
	}
	return pgconn.NewCommandTag("OK 1"), nil
}

func (p *poolStub) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.calls = append(p.calls, call{sql: sql, args: args})
	if p.row.vals == nil && p.row.err == nil {
		return rowStub{err: errors.New("no row configured")}
	}
	return p.row
}

func (p *poolStub) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.calls = append(p.calls, call{sql: sql, args: args})
	if p.queryErr != nil {
		return nil, p.queryErr
	}
	if p.queries >= len(p.rows) {
		return &rowsStub{}, nil
	}
	r := p.rows[p.queries]
	p.queries++
	return r, nil
}

func (p *poolStub) BeginTx(_ context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	return &txStub{pool: p}, nil
}

// txStub routes statements back to its pool so tests see one call log.
type txStub struct {
	pgx.Tx
	pool *poolStub
	done bool
}

func (t *txStub) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.pool.Exec(ctx, sql, args...)
}

func (t *txStub) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.pool.QueryRow(ctx, sql, args...)
}

func (t *txStub) Commit(_ context.Context) error {
	if t.pool.commitErr != nil {
		return t.pool.commitErr
	}
	t.done = true
	t.pool.committed = true
	return nil
}

func (t *txStub) Rollback(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.pool.rolledBack = true
	return nil
}

var fixedTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func pgErr(code, constraint string) error {
	return &pgconn.PgError{Code: code, ConstraintName: constraint, Message: "stub"}
}
