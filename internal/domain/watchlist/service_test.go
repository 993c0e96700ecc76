package watchlist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coinwatch/pkg/errors"
)

// MockRepository is a mock for Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, item *Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, userID *uuid.UUID) ([]*Item, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Item), args.Error(1)
}

func (m *MockRepository) Exists(ctx context.Context, userID *uuid.UUID, coinID string) (bool, error) {
	args := m.Called(ctx, userID, coinID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, userID *uuid.UUID, coinID string) error {
	args := m.Called(ctx, userID, coinID)
	return args.Error(0)
}

func TestService_Add(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name    string
		coinID  string
		exists  bool
		wantErr error
	}{
		{
			name:   "adds new coin",
			coinID: "bitcoin",
		},
		{
			name:    "empty coin id",
			coinID:  "",
			wantErr: errors.ErrInvalidInput,
		},
		{
			name:    "duplicate coin",
			coinID:  "bitcoin",
			exists:  true,
			wantErr: errors.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			svc := NewService(mockRepo)

			if tt.coinID != "" {
				mockRepo.On("Exists", mock.Anything, &userID, tt.coinID).Return(tt.exists, nil)
				if !tt.exists {
					mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(item *Item) bool {
						return item.CoinID == tt.coinID &&
							item.UserID == &userID &&
							item.ID != uuid.Nil &&
							!item.CreatedAt.IsZero()
					})).Return(nil)
				}
			}

			item, err := svc.Add(context.Background(), &userID, tt.coinID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, item)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.coinID, item.CoinID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_Add_AnonymousList(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo)

	mockRepo.On("Exists", mock.Anything, (*uuid.UUID)(nil), "ethereum").Return(false, nil)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(item *Item) bool {
		return item.UserID == nil && item.CoinID == "ethereum"
	})).Return(nil)

	item, err := svc.Add(context.Background(), nil, "ethereum")

	require.NoError(t, err)
	assert.Nil(t, item.UserID)
	mockRepo.AssertExpectations(t)
}

func TestService_List_NeverNil(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo)

	mockRepo.On("List", mock.Anything, (*uuid.UUID)(nil)).Return([]*Item{}, nil)

	items, err := svc.List(context.Background(), nil)

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestService_Remove(t *testing.T) {
	userID := uuid.New()

	t.Run("removes coin", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("Delete", mock.Anything, &userID, "bitcoin").Return(nil)

		require.NoError(t, svc.Remove(context.Background(), &userID, "bitcoin"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("absent coin is a no-op", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("Delete", mock.Anything, &userID, "dogecoin").Return(nil)

		require.NoError(t, svc.Remove(context.Background(), &userID, "dogecoin"))
	})

	t.Run("empty coin id", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		err := svc.Remove(context.Background(), &userID, "")

		assert.ErrorIs(t, err, errors.ErrInvalidInput)
		mockRepo.AssertNotCalled(t, "Delete")
	})
}

func TestService_CoinIDs(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo)

	items := []*Item{
		{ID: uuid.New(), CoinID: "bitcoin"},
		{ID: uuid.New(), CoinID: "ethereum"},
	}
	mockRepo.On("List", mock.Anything, (*uuid.UUID)(nil)).Return(items, nil)

	ids, err := svc.CoinIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, ids)
}
