package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"verilens/internal/domain"
	"verilens/mocks"
)

func TestFactCheckSearch_RequiresText(t *testing.T) {
	svc := NewFactCheckService(new(mocks.MockFactCheckRepo))

	_, err := svc.Search(context.Background(), "   ", "", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFactCheckSearch_DefaultsAndCapsMaxResults(t *testing.T) {
	repo := new(mocks.MockFactCheckRepo)
	repo.On("Search", mock.Anything, "flood", "", defaultFactCheckResults).Return([]domain.FactCheck{}, nil).Once()
	repo.On("Search", mock.Anything, "flood", "", maxFactCheckResults).Return([]domain.FactCheck{}, nil).Once()

	svc := NewFactCheckService(repo)

	_, err := svc.Search(context.Background(), "flood", "", 0)
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), "flood", "", 500)
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestFactCheckStats_Delegates(t *testing.T) {
	stats := &domain.FactCheckStats{
		TotalFactChecks: 42,
		ChecksBySource:  map[string]int{"snopes": 40, "politifact": 2},
		LastUpdated:     time.Now(),
	}
	repo := new(mocks.MockFactCheckRepo)
	repo.On("Stats", mock.Anything).Return(stats, nil)

	svc := NewFactCheckService(repo)
	got, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}
