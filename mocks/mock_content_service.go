package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"verilens/internal/domain"
)

// MockContentService is a mock implementation of service.ContentService.
type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) AnalyzeURL(ctx context.Context, pageURL string) *domain.PageAnalysis {
	args := m.Called(ctx, pageURL)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.PageAnalysis)
}

func (m *MockContentService) AnalyzeImage(ctx context.Context, data []byte, caption string, reverseSearch bool) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, data, caption, reverseSearch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockContentService) AnalyzeVideo(ctx context.Context, data []byte, analyzeFrames bool) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, data, analyzeFrames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}
