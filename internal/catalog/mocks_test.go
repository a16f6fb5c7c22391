package catalog

import (
	"context"
	"sync"
)

// MockConverter multiplies by a fixed rate, or returns nil when Fail is set
type MockConverter struct {
	mu    sync.Mutex
	Rate  int64
	Fail  bool
	Calls []float64
}

func (m *MockConverter) Convert(_ context.Context, amountUSD float64) *int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, amountUSD)
	if m.Fail {
		return nil
	}
	v := int64(amountUSD) * m.Rate
	return &v
}

func (m *MockConverter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
