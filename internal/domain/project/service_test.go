package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"geotrail/internal/domain/geo"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, userID int) ([]Project, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]Project), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, userID int, name string) (*Project, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Project), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, p *Project) (*Project, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Project), args.Error(1)
}

func (m *MockRepository) SaveBlob(ctx context.Context, userID int, path string, data []byte) error {
	args := m.Called(ctx, userID, path, data)
	return args.Error(0)
}

func (m *MockRepository) GetBlob(ctx context.Context, userID int, path string) ([]byte, error) {
	args := m.Called(ctx, userID, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestService_Create(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	p := Project{
		Name:      "trip",
		StartTime: time.Now(),
		Tracks: []TrackDoc{
			{Timestamp: time.Now(), Points: []geo.LatLng{{Lat: 1, Lng: 2}}},
			{Timestamp: time.Now(), Points: []geo.LatLng{{Lat: 3, Lng: 4}}},
		},
		Photos: []PhotoDoc{
			{BlobPath: "trip/photo_1.jpg", Timestamp: time.Now()},
		},
		// Client-supplied counts and owner are ignored.
		TracksCount: 99,
		PhotosCount: 99,
		UserID:      42,
	}

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(stored *Project) bool {
		return stored.UserID == 7 && stored.TracksCount == 2 && stored.PhotosCount == 1
	})).Return(&Project{Name: "trip", UserID: 7, CreatedAt: time.Now()}, nil)

	stored, err := service.Create(context.Background(), 7, p)
	require.NoError(t, err)
	assert.Equal(t, "trip", stored.Name)
	assert.False(t, stored.CreatedAt.IsZero())

	mockRepo.AssertExpectations(t)
}

func TestService_Create_EmptyName(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	_, err := service.Create(context.Background(), 7, Project{})
	assert.ErrorIs(t, err, ErrInvalidName)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Create_RepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Create", mock.Anything, mock.Anything).
		Return(nil, errors.New("database error"))

	_, err := service.Create(context.Background(), 7, Project{Name: "trip"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")

	mockRepo.AssertExpectations(t)
}

func TestService_Get(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Get", mock.Anything, 7, "trip").
		Return(&Project{Name: "trip", UserID: 7}, nil)

	p, err := service.Get(context.Background(), 7, "trip")
	require.NoError(t, err)
	assert.Equal(t, "trip", p.Name)

	mockRepo.AssertExpectations(t)
}

func TestService_Get_NotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Get", mock.Anything, 7, "missing").Return(nil, ErrNotFound)

	_, err := service.Get(context.Background(), 7, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = service.Get(context.Background(), 7, "")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestService_Blobs(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	data := []byte("jpeg")
	mockRepo.On("SaveBlob", mock.Anything, 7, "trip/photo_1.jpg", data).Return(nil)
	mockRepo.On("GetBlob", mock.Anything, 7, "trip/photo_1.jpg").Return(data, nil)

	require.NoError(t, service.SaveBlob(context.Background(), 7, "trip/photo_1.jpg", data))

	got, err := service.GetBlob(context.Background(), 7, "trip/photo_1.jpg")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = service.GetBlob(context.Background(), 7, "")
	assert.ErrorIs(t, err, ErrBlobNotFound)

	mockRepo.AssertExpectations(t)
}
