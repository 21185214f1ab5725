package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"verilens/internal/domain"
	"verilens/internal/port"
)

// MockFrameExtractor is a mock implementation of port.FrameExtractor.
type MockFrameExtractor struct {
	mock.Mock
}

func (m *MockFrameExtractor) Extract(ctx context.Context, videoBytes []byte, interval int) (*domain.VideoMetadata, []port.FrameSample, error) {
	args := m.Called(ctx, videoBytes, interval)
	var meta *domain.VideoMetadata
	if args.Get(0) != nil {
		meta = args.Get(0).(*domain.VideoMetadata)
	}
	var frames []port.FrameSample
	if args.Get(1) != nil {
		frames = args.Get(1).([]port.FrameSample)
	}
	return meta, frames, args.Error(2)
}
