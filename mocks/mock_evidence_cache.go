package mocks

import (
	"github.com/stretchr/testify/mock"

	"verilens/internal/domain"
)

// MockEvidenceCache is a mock implementation of port.EvidenceCache.
type MockEvidenceCache struct {
	mock.Mock
}

func (m *MockEvidenceCache) Get(key string) (*domain.AnalysisResult, bool) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Bool(1)
}

func (m *MockEvidenceCache) Put(key string, result *domain.AnalysisResult) {
	m.Called(key, result)
}

func (m *MockEvidenceCache) Flush() error {
	args := m.Called()
	return args.Error(0)
}
