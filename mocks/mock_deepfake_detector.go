package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"verilens/internal/port"
)

// MockDeepfakeDetector is a mock implementation of port.DeepfakeDetector.
type MockDeepfakeDetector struct {
	mock.Mock
}

func (m *MockDeepfakeDetector) Detect(ctx context.Context, frames [][]byte) (*port.DeepfakeVerdict, error) {
	args := m.Called(ctx, frames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.DeepfakeVerdict), args.Error(1)
}
