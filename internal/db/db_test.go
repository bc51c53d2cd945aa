package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// countingDriver records commit/rollback calls so the tests can observe what
// WithTx did without a real database.
type txCounters struct {
	commits   int64
	rollbacks int64
}

type countingDriver struct {
	counters *txCounters
}

func (d *countingDriver) Open(string) (driver.Conn, error) {
	return &countingConn{counters: d.counters}, nil
}

type countingConn struct {
	counters *txCounters
}

func (c *countingConn) Prepare(string) (driver.Stmt, error) { return noopStmt{}, nil }
func (c *countingConn) Close() error                        { return nil }

func (c *countingConn) Begin() (driver.Tx, error) {
	return &countingTx{counters: c.counters}, nil
}

func (c *countingConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return &countingTx{counters: c.counters}, nil
}

type countingTx struct {
	counters *txCounters
}

func (t *countingTx) Commit() error {
	atomic.AddInt64(&t.counters.commits, 1)
	return nil
}

func (t *countingTx) Rollback() error {
	atomic.AddInt64(&t.counters.rollbacks, 1)
	return nil
}

type noopStmt struct{}

func (noopStmt) Close() error                                    { return nil }
func (noopStmt) NumInput() int                                   { return -1 }
func (noopStmt) Exec([]driver.Value) (driver.Result, error)      { return nil, nil }
func (noopStmt) Query([]driver.Value) (driver.Rows, error)       { return nil, nil }

// flakyDriver fails the first N commits with a given Postgres error code, the
// way a serialization conflict surfaces at commit time.
type flakyState struct {
	commitCalls int64
	failCommits int64
	failCode    string
}

type flakyDriver struct {
	state *flakyState
}

func (d *flakyDriver) Open(string) (driver.Conn, error) {
	return &flakyConn{state: d.state}, nil
}

type flakyConn struct {
	state *flakyState
}

func (c *flakyConn) Prepare(string) (driver.Stmt, error) { return noopStmt{}, nil }
func (c *flakyConn) Close() error                        { return nil }

func (c *flakyConn) Begin() (driver.Tx, error) {
	return &flakyTx{state: c.state}, nil
}

func (c *flakyConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return &flakyTx{state: c.state}, nil
}

type flakyTx struct {
	state *flakyState
}

func (t *flakyTx) Commit() error {
	call := atomic.AddInt64(&t.state.commitCalls, 1)
	if call <= t.state.failCommits {
		code := t.state.failCode
		if code == "" {
			code = "40001"
		}
		return &pq.Error{Code: pq.ErrorCode(code)}
	}
	return nil
}

func (t *flakyTx) Rollback() error { return nil }

var driverSeq uint64

func openWithDriver(t *testing.T, d driver.Driver) *sqlx.DB {
	t.Helper()
	name := fmt.Sprintf("bureau-test-%d", atomic.AddUint64(&driverSeq, 1))
	sql.Register(name, d)
	sqlDB, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlx.NewDb(sqlDB, name)
}

func TestWithTxCommits(t *testing.T) {
	counters := &txCounters{}
	pool := openWithDriver(t, &countingDriver{counters: counters})

	if err := WithTx(context.Background(), pool, func(*sqlx.Tx) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counters.commits != 1 || counters.rollbacks != 0 {
		t.Fatalf("expected commit=1 rollback=0, got %d/%d", counters.commits, counters.rollbacks)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	counters := &txCounters{}
	pool := openWithDriver(t, &countingDriver{counters: counters})

	boom := errors.New("boom")
	if err := WithTx(context.Background(), pool, func(*sqlx.Tx) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}
	if counters.rollbacks != 1 {
		t.Fatalf("expected rollback=1, got %d", counters.rollbacks)
	}
}

func TestWithTxRetriesOnSerializationConflict(t *testing.T) {
	state := &flakyState{failCommits: 1}
	pool := openWithDriver(t, &flakyDriver{state: state})

	if err := WithTx(context.Background(), pool, func(*sqlx.Tx) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.commitCalls != 2 {
		t.Fatalf("expected 2 commit attempts, got %d", state.commitCalls)
	}
}

func TestWithTxStopsAtRetryBudget(t *testing.T) {
	state := &flakyState{failCommits: 10, failCode: "40P01"}
	pool := openWithDriver(t, &flakyDriver{state: state})

	err := WithTx(context.Background(), pool, func(*sqlx.Tx) error { return nil })
	if err == nil {
		t.Fatalf("expected the conflict to surface after the retry budget")
	}
	if state.commitCalls != maxTxAttempts {
		t.Fatalf("expected %d commit attempts, got %d", maxTxAttempts, state.commitCalls)
	}
}

func TestRetryableRecognizesOnlyConflictCodes(t *testing.T) {
	if retryable(errors.New("plain error")) {
		t.Fatalf("plain errors must not be retried")
	}
	if retryable(&pq.Error{Code: "23505"}) {
		t.Fatalf("constraint violations must not be retried")
	}
	for _, code := range []string{"40001", "40P01"} {
		if !retryable(&pq.Error{Code: pq.ErrorCode(code)}) {
			t.Fatalf("code %s must be retried", code)
		}
	}
}
