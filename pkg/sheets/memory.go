package sheets

import (
	"context"
	"sync"
)

// MemoryClient 进程内表格，行为与真实表格一致：写入不会截断未覆盖的区域
type MemoryClient struct {
	mu   sync.Mutex
	rows [][]string
}

// NewMemoryClient 创建内存表格，initial 为初始内容（会被复制）
func NewMemoryClient(initial [][]string) *MemoryClient {
	return &MemoryClient{rows: copyTable(initial)}
}

func (m *MemoryClient) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = nil
	return nil
}

func (m *MemoryClient) Write(_ context.Context, table [][]string, origin string) error {
	r0, c0, err := parseOrigin(origin)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, row := range table {
		idx := r0 + i
		for len(m.rows) <= idx {
			m.rows = append(m.rows, nil)
		}
		target := m.rows[idx]
		for len(target) < c0+len(row) {
			target = append(target, "")
		}
		copy(target[c0:], row)
		m.rows[idx] = target
	}
	return nil
}

func (m *MemoryClient) ReadAll(_ context.Context) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyTable(m.rows), nil
}

// Snapshot 返回当前内容副本
func (m *MemoryClient) Snapshot() [][]string {
	rows, _ := m.ReadAll(context.Background())
	return rows
}

func copyTable(src [][]string) [][]string {
	if src == nil {
		return nil
	}
	out := make([][]string, len(src))
	for i, row := range src {
		out[i] = append([]string(nil), row...)
	}
	return out
}
