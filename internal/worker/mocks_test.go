package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// MockClickHouseConn implements driver.Conn for testing
type MockClickHouseConn struct {
	driver.Conn

	mu       sync.Mutex
	rows     [][]interface{}
	batches  int
	execs    []string
	failSend bool
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	return &MockBatch{conn: m}, nil
}

func (m *MockClickHouseConn) Exec(ctx context.Context, query string, args ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execs = append(m.execs, query)
	return nil
}

func (m *MockClickHouseConn) Rows() [][]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]interface{}(nil), m.rows...)
}

func (m *MockClickHouseConn) Batches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}

// MockBatch buffers appended rows until Send
type MockBatch struct {
	driver.Batch
	conn    *MockClickHouseConn
	pending [][]interface{}
}

func (m *MockBatch) Append(v ...interface{}) error {
	m.pending = append(m.pending, v)
	return nil
}

func (m *MockBatch) Send() error {
	m.conn.mu.Lock()
	defer m.conn.mu.Unlock()
	if m.conn.failSend {
		return errors.New("clickhouse unavailable")
	}
	m.conn.rows = append(m.conn.rows, m.pending...)
	m.conn.batches++
	return nil
}
