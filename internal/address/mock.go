package address

import (
	"context"
	"sync"
)

// MockLookuper is a test implementation of Lookuper.
type MockLookuper struct {
	LookupFunc func(ctx context.Context, postcode, houseNumber string) ([]Address, error)

	mu    sync.Mutex
	calls []LookupCall
}

// LookupCall records the arguments of one Lookup call.
type LookupCall struct {
	Postcode    string
	HouseNumber string
}

// NewMockLookuper creates a mock that answers every lookup with addrs.
func NewMockLookuper(addrs ...Address) *MockLookuper {
	return &MockLookuper{
		LookupFunc: func(ctx context.Context, postcode, houseNumber string) ([]Address, error) {
			return addrs, nil
		},
	}
}

// Lookup records the call and delegates to LookupFunc.
func (m *MockLookuper) Lookup(ctx context.Context, postcode, houseNumber string) ([]Address, error) {
	m.mu.Lock()
	m.calls = append(m.calls, LookupCall{Postcode: postcode, HouseNumber: houseNumber})
	m.mu.Unlock()

	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, postcode, houseNumber)
	}
	return nil, nil
}

// Calls returns the recorded calls in order.
func (m *MockLookuper) Calls() []LookupCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LookupCall(nil), m.calls...)
}
