package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/adamanr/ems_service/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockDB represents a mock database connection.
type MockDB struct {
	mock.Mock
}

func (m *MockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	mockArgs := append([]any{ctx, sql}, args...)
	callArgs := m.Called(mockArgs...)
	return callArgs.Get(0).(pgx.Rows), callArgs.Error(1)
}

func (m *MockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	mockArgs := append([]any{ctx, sql}, args...)
	callArgs := m.Called(mockArgs...)
	return callArgs.Get(0).(pgx.Row)
}

func (m *MockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	mockArgs := append([]any{ctx, sql}, args...)
	callArgs := m.Called(mockArgs...)
	return callArgs.Get(0).(pgconn.CommandTag), callArgs.Error(1)
}

func (m *MockDB) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

// MockRow represents a mock database row.
type MockRow struct {
	data []any
	err  error
}

func NewMockRow(data []any, err error) *MockRow {
	return &MockRow{data: data, err: err}
}

func (m *MockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}

	return scanValues(m.data, dest)
}

// MockRows represents mock database rows.
type MockRows struct {
	rows       [][]any
	pos        int
	err        error
	fieldDescs []pgconn.FieldDescription
}

func NewMockRows(rows [][]any, err error, fieldDescs []pgconn.FieldDescription) *MockRows {
	return &MockRows{
		rows:       rows,
		pos:        -1,
		err:        err,
		fieldDescs: fieldDescs,
	}
}

func (m *MockRows) FieldDescriptions() []pgconn.FieldDescription {
	return m.fieldDescs
}

func (m *MockRows) Next() bool {
	if m.err != nil {
		return false
	}

	m.pos++
	return m.pos < len(m.rows)
}

func (m *MockRows) Close() {}

func (m *MockRows) Scan(dest ...any) error {
	if m.pos >= len(m.rows) {
		return nil
	}

	return scanValues(m.rows[m.pos], dest)
}

func (m *MockRows) Err() error {
	return m.err
}

func (m *MockRows) CommandTag() pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("SELECT %d", len(m.rows)))
}

func (m *MockRows) Values() ([]any, error) {
	if m.pos >= len(m.rows) {
		return nil, nil
	}
	return m.rows[m.pos], nil
}

func (m *MockRows) RawValues() [][]byte {
	return nil
}

func (m *MockRows) Conn() *pgx.Conn {
	return nil
}

func scanValues(data, dest []any) error {
	if len(data) != len(dest) {
		return fmt.Errorf("scan: %d values into %d targets", len(data), len(dest))
	}

	for i, val := range data {
		switch d := dest[i].(type) {
		case *int64:
			*d = val.(int64)
		case *string:
			*d = val.(string)
		case *bool:
			*d = val.(bool)
		case *time.Time:
			*d = val.(time.Time)
		case **int64:
			*d, _ = val.(*int64)
		case **string:
			*d, _ = val.(*string)
		case **time.Time:
			*d, _ = val.(*time.Time)
		case **entity.Date:
			*d, _ = val.(*entity.Date)
		case *entity.LeaveStatus:
			*d = entity.LeaveStatus(val.(string))
		case pgtype.DateScanner:
			if err := d.ScanDate(pgtype.Date{Time: val.(time.Time), Valid: true}); err != nil {
				return err
			}
		case *any:
			*d = val
		default:
			return fmt.Errorf("scan: unsupported target %T", dest[i])
		}
	}

	return nil
}

// MockRedis represents a mock Redis client.
type MockRedis struct {
	mock.Mock
}

func (m *MockRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	args := m.Called(ctx, key)

	cmd := redis.NewIntCmd(ctx)
	if err := args.Error(1); err != nil {
		cmd.SetErr(err)
		return cmd
	}
	cmd.SetVal(args.Get(0).(int64))

	return cmd
}

func (m *MockRedis) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	args := m.Called(ctx, key, expiration)

	cmd := redis.NewBoolCmd(ctx)
	if err := args.Error(0); err != nil {
		cmd.SetErr(err)
		return cmd
	}
	cmd.SetVal(true)

	return cmd
}

func (m *MockRedis) TTL(ctx context.Context, key string) *redis.DurationCmd {
	args := m.Called(ctx, key)

	cmd := redis.NewDurationCmd(ctx, time.Second)
	if err := args.Error(1); err != nil {
		cmd.SetErr(err)
		return cmd
	}
	cmd.SetVal(args.Get(0).(time.Duration))

	return cmd
}

func NewMockCommandTag(op string, rowsAffected int64) pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("%s %d", op, rowsAffected))
}

func fields(names ...string) []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, 0, len(names))
	for _, n := range names {
		out = append(out, pgconn.FieldDescription{Name: n})
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
