package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"verilens/internal/domain"
)

// MockFactCheckService is a mock implementation of service.FactCheckService.
type MockFactCheckService struct {
	mock.Mock
}

func (m *MockFactCheckService) Search(ctx context.Context, text, sourceURL string, maxResults int) ([]domain.FactCheck, error) {
	args := m.Called(ctx, text, sourceURL, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FactCheck), args.Error(1)
}

func (m *MockFactCheckService) Stats(ctx context.Context) (*domain.FactCheckStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FactCheckStats), args.Error(1)
}
