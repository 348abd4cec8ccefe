package sql

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/odbc"
	"github.com/arloliu/odbc/types"
)

// cancelInterval is how often the watcher repeats SQLCancel until the
// blocked call returns.
const cancelInterval = 20 * time.Millisecond

// ErrLastInsertID is returned by Result.LastInsertId.
var ErrLastInsertID = errors.New("odbc: LastInsertId is not supported")

// Stmt implements driver.Stmt over a prepared odbc.Statement.
type Stmt struct {
	conn *Conn
	stmt *odbc.Statement
}

var (
	_ driver.Stmt             = (*Stmt)(nil)
	_ driver.StmtExecContext  = (*Stmt)(nil)
	_ driver.StmtQueryContext = (*Stmt)(nil)
)

// Close implements driver.Stmt.
func (s *Stmt) Close() error {
	return s.stmt.Close()
}

// NumInput implements driver.Stmt. It returns -1 when the driver cannot
// count the parameters, leaving the check to the driver.
func (s *Stmt) NumInput() int {
	n, err := s.stmt.NumParams()
	if err != nil {
		return -1
	}

	return n
}

// Exec implements driver.Stmt.
func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), named(args))
}

// Query implements driver.Stmt.
func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), named(args))
}

// ExecContext implements driver.StmtExecContext.
func (s *Stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	if err := s.execute(ctx, args); err != nil {
		return nil, err
	}

	n, err := s.stmt.RowCount()
	if err != nil {
		return nil, err
	}

	return Result{rowsAffected: n}, nil
}

// QueryContext implements driver.StmtQueryContext.
func (s *Stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	if err := s.execute(ctx, args); err != nil {
		return nil, err
	}

	cols, err := s.stmt.DescribeColumns()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}

	return &Rows{stmt: s.stmt, cols: cols, names: names}, nil
}

func (s *Stmt) execute(ctx context.Context, args []driver.NamedValue) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if st := s.stmt.State(); st != odbc.StateIdle && st != odbc.StateNoResults {
		if err := s.stmt.CloseCursor(); err != nil {
			return err
		}
	}

	for _, arg := range args {
		if arg.Name != "" {
			return fmt.Errorf("odbc: named parameter %q is not supported", arg.Name)
		}

		v, err := toValue(arg.Value)
		if err != nil {
			return &types.BindingError{Ordinal: arg.Ordinal, Cause: err}
		}
		if err := s.stmt.BindParameter(arg.Ordinal, v); err != nil {
			return err
		}
	}

	stop := watchCancel(ctx, s.stmt)
	err := s.stmt.Execute()
	stop()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", ctxErr, err)
		}
		return err
	}

	return nil
}

// watchCancel issues SQLCancel on st once ctx is done, repeating until the
// returned stop function is called.
func watchCancel(ctx context.Context, st *odbc.Statement) func() {
	if ctx.Done() == nil {
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		select {
		case <-done:
			return
		case <-ctx.Done():
		}

		ticker := time.NewTicker(cancelInterval)
		defer ticker.Stop()

		for {
			_ = st.Cancel()
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}

func named(args []driver.Value) []driver.NamedValue {
	out := make([]driver.NamedValue, len(args))
	for i, v := range args {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}

	return out
}

func toValue(x any) (odbc.Value, error) {
	if t, ok := x.(time.Time); ok {
		return odbc.Text(t.Format(time.RFC3339Nano)), nil
	}

	return odbc.ValueOf(x)
}

// Result implements driver.Result.
type Result struct {
	rowsAffected int64
}

// LastInsertId implements driver.Result.
func (r Result) LastInsertId() (int64, error) {
	return 0, ErrLastInsertID
}

// RowsAffected implements driver.Result.
func (r Result) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}

// Rows implements driver.Rows over a statement's open cursor.
type Rows struct {
	stmt  *odbc.Statement
	cols  []types.ColumnDescription
	names []string
}

var (
	_ driver.Rows                           = (*Rows)(nil)
	_ driver.RowsColumnTypeDatabaseTypeName = (*Rows)(nil)
	_ driver.RowsColumnTypeNullable         = (*Rows)(nil)
)

// Columns implements driver.Rows.
func (r *Rows) Columns() []string {
	return r.names
}

// Close implements driver.Rows.
func (r *Rows) Close() error {
	if r.stmt.State() == odbc.StateIdle {
		return nil
	}

	return r.stmt.CloseCursor()
}

// Next implements driver.Rows.
func (r *Rows) Next(dest []driver.Value) error {
	res, err := r.stmt.Fetch()
	if err != nil {
		return err
	}

	switch res {
	case types.FetchNoMoreRows:
		return io.EOF
	case types.FetchStillExecuting:
		return errors.New("odbc: statement is still executing")
	}

	for i := range dest {
		v, err := r.stmt.GetValue(i + 1)
		if err != nil {
			return err
		}
		dest[i] = driverValue(v)
	}

	return nil
}

// ColumnTypeDatabaseTypeName implements driver.RowsColumnTypeDatabaseTypeName.
func (r *Rows) ColumnTypeDatabaseTypeName(index int) string {
	return r.cols[index].Type.String()
}

// ColumnTypeNullable implements driver.RowsColumnTypeNullable.
func (r *Rows) ColumnTypeNullable(index int) (nullable, ok bool) {
	switch r.cols[index].Nullable {
	case types.NoNulls:
		return false, true
	case types.Nullable:
		return true, true
	default:
		return false, false
	}
}

// driverValue narrows a cell to the types database/sql expects from Next.
func driverValue(v odbc.Value) driver.Value {
	switch x := v.Any().(type) {
	case nil:
		return nil
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return strconv.FormatUint(x, 10)
		}
		return int64(x)
	case float32:
		return float64(x)
	case uuid.UUID:
		return x.String()
	default:
		return x
	}
}
