package directory

import (
	"context"
	"sync"
)

// Mock is a mock implementation of Service for testing.
type Mock struct {
	mu sync.Mutex

	// Users keyed by phone number.
	Users map[string]*User

	// Configurable behavior
	ExistsFunc   func(ctx context.Context, phone string) (bool, error)
	DetailsFunc  func(ctx context.Context, phone string) (*Details, error)
	RegisterFunc func(ctx context.Context, phone, role string) (*RegisterResult, error)

	// Captured calls for assertions
	Registered []RegisteredCall
}

// RegisteredCall records one Register invocation.
type RegisteredCall struct {
	Phone string
	Role  string
}

// NewMock creates a new Mock directory.
func NewMock() *Mock {
	return &Mock{Users: make(map[string]*User)}
}

// Exists implements Service.
func (m *Mock) Exists(ctx context.Context, phone string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, phone)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Users[phone]
	return ok, nil
}

// Details implements Service.
func (m *Mock) Details(ctx context.Context, phone string) (*Details, error) {
	if m.DetailsFunc != nil {
		return m.DetailsFunc(ctx, phone)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[phone]
	if !ok {
		return &Details{Status: StatusNotFound, Message: "Number is not registered"}, nil
	}
	if u.Email == "" {
		return &Details{Status: StatusIncomplete, Data: u}, nil
	}
	return &Details{Status: StatusSuccess, Message: "User found", Data: u}, nil
}

// Register implements Service.
func (m *Mock) Register(ctx context.Context, phone, role string) (*RegisterResult, error) {
	m.mu.Lock()
	m.Registered = append(m.Registered, RegisteredCall{Phone: phone, Role: role})
	m.mu.Unlock()

	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, phone, role)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[phone]; ok {
		return &RegisterResult{Status: StatusExists}, nil
	}
	m.Users[phone] = &User{PhoneNumber: phone, Role: role}
	return &RegisterResult{Status: StatusCreated}, nil
}
