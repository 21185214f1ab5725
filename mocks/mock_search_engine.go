package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"verilens/internal/domain"
)

// MockSearchEngine is a mock implementation of port.SearchEngine.
type MockSearchEngine struct {
	mock.Mock
}

func (m *MockSearchEngine) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSearchEngine) Search(ctx context.Context, imageBytes []byte) ([]domain.Match, error) {
	args := m.Called(ctx, imageBytes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}
