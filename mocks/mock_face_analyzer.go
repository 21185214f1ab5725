package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"verilens/internal/domain"
)

// MockFaceAnalyzer is a mock implementation of port.FaceAnalyzer.
type MockFaceAnalyzer struct {
	mock.Mock
}

func (m *MockFaceAnalyzer) AnalyzeFaces(ctx context.Context, frameJPEG []byte) ([]domain.FaceAttributes, error) {
	args := m.Called(ctx, frameJPEG)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FaceAttributes), args.Error(1)
}
