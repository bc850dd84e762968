package storage_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/neexbeast/wwtravelclub/internal/travel"
)

// ---- mock Querier ----

type mockQuerier struct {
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	beginFn    func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.queryRowFn(ctx, sql, args...)
}
func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return m.queryFn(ctx, sql, args...)
}
func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return m.execFn(ctx, sql, args...)
}
func (m *mockQuerier) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.beginFn(ctx)
}

// ---- mock pgx.Row ----

type fakeRow struct {
	scanFn func(dest ...any) error
}

func (f *fakeRow) Scan(dest ...any) error { return f.scanFn(dest...) }

// ---- mock pgx.Rows ----

type fakeRows struct {
	rows    [][]any
	idx     int
	rowErr  error
	scanErr error
	closed  bool
}

func (f *fakeRows) Next() bool                                   { f.idx++; return f.idx <= len(f.rows) }
func (f *fakeRows) Err() error                                   { return f.rowErr }
func (f *fakeRows) Close()                                       { f.closed = true }
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }

func (f *fakeRows) Scan(dest ...any) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	row := f.rows[f.idx-1]
	for i, d := range dest {
		if i >= len(row) {
			break
		}
		switch v := d.(type) {
		case *int:
			*v = row[i].(int)
		case *string:
			*v = row[i].(string)
		case **int:
			if row[i] == nil {
				*v = nil
			} else {
				n := row[i].(int)
				*v = &n
			}
		case **string:
			if row[i] == nil {
				*v = nil
			} else {
				s := row[i].(string)
				*v = &s
			}
		case **time.Time:
			if row[i] == nil {
				*v = nil
			} else {
				t := row[i].(time.Time)
				*v = &t
			}
		}
	}
	return nil
}

// aggregateRow builds one joined destination/package row. A nil p yields the
// all-null package side of a destination without packages.
func aggregateRow(d travel.Destination, p *travel.Package) []any {
	row := []any{d.ID, d.Name, d.Country, nil, nil, nil, nil, nil, nil, nil, nil}
	if d.Description != nil {
		row[3] = *d.Description
	}
	if p == nil {
		return row
	}
	row[4] = p.ID
	row[5] = p.Name
	if p.Description != nil {
		row[6] = *p.Description
	}
	if p.StartValidityDate != nil {
		row[7] = *p.StartValidityDate
	}
	if p.EndValidityDate != nil {
		row[8] = *p.EndValidityDate
	}
	row[9] = p.DurationInDays
	row[10] = p.Price.StringFixed(3)
	return row
}

// ---- mock pgx.Tx ----

type execCall struct {
	sql  string
	args []any
}

// mockTx is a minimal pgx.Tx implementation that records statements.
type mockTx struct {
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	commitFn   func(ctx context.Context) error

	execs      []execCall
	committed  bool
	rolledBack bool
}

func (t *mockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, execCall{sql: sql, args: args})
	if t.execFn == nil {
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	return t.execFn(ctx, sql, args...)
}
func (t *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.queryRowFn(ctx, sql, args...)
}
func (t *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.queryFn(ctx, sql, args...)
}
func (t *mockTx) Commit(ctx context.Context) error {
	if t.commitFn != nil {
		if err := t.commitFn(ctx); err != nil {
			return err
		}
	}
	t.committed = true
	return nil
}
func (t *mockTx) Rollback(_ context.Context) error {
	t.rolledBack = true
	return nil
}

// pgx.Tx has many more methods; stub them all out.
func (t *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (t *mockTx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *mockTx) SendBatch(_ context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }
func (t *mockTx) LargeObjects() pgx.LargeObjects                             { return pgx.LargeObjects{} }
func (t *mockTx) Prepare(_ context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *mockTx) Conn() *pgx.Conn { return nil }

// txQuerier returns a Querier whose Begin hands out tx.
func txQuerier(tx *mockTx) *mockQuerier {
	return &mockQuerier{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil },
	}
}
