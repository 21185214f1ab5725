package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTextModel is a mock implementation of port.TextModel.
type MockTextModel struct {
	mock.Mock
}

func (m *MockTextModel) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
