package repo

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// sliceRows implements pgx.Rows over a fixed set of scan callbacks.
type sliceRows struct {
	testRowsBase
	rows []func(dest ...any) error
	idx  int
}

func (r *sliceRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *sliceRows) Scan(dest ...any) error {
	return r.rows[r.idx-1](dest...)
}

func (r *sliceRows) Close()     {}
func (r *sliceRows) Err() error { return nil }

type testRowsBase struct{}

func (testRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (testRowsBase) Conn() *pgx.Conn { return nil }

func (testRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (testRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (testRowsBase) RawValues() [][]byte { return nil }

// stubExecutor routes queries to handlers keyed on a SQL fragment.
type stubExecutor struct {
	mu       sync.Mutex
	queries  []string
	rowFor   func(query string, args []any) pgx.Row
	rowsFor  func(query string, args []any) (pgx.Rows, error)
	execTag  pgconn.CommandTag
	execErr  error
	lastArgs []any
}

func (s *stubExecutor) record(query string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	s.lastArgs = args
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.record(query, args)
	return s.execTag, s.execErr
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.record(query, args)
	if s.rowFor == nil {
		return simpleRow{}
	}
	return s.rowFor(query, args)
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	s.record(query, args)
	if s.rowsFor == nil {
		return &sliceRows{}, nil
	}
	return s.rowsFor(query, args)
}

func (s *stubExecutor) sawQueryContaining(fragment string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.queries {
		if strings.Contains(q, fragment) {
			return true
		}
	}
	return false
}
