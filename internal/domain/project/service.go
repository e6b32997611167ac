package project

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"
)

type Servicer interface {
	List(ctx context.Context, userID int) ([]Project, error)
	Get(ctx context.Context, userID int, name string) (*Project, error)
	Create(ctx context.Context, userID int, p Project) (*Project, error)
	SaveBlob(ctx context.Context, userID int, path string, data []byte) error
	GetBlob(ctx context.Context, userID int, path string) ([]byte, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "project_service"),
	}
}

func (s *Service) List(ctx context.Context, userID int) ([]Project, error) {
	projects, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *Service) Get(ctx context.Context, userID int, name string) (*Project, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	return s.repo.Get(ctx, userID, name)
}

// Create stores one project record. The owner and the counts are
// derived server-side, not trusted from the client.
func (s *Service) Create(ctx context.Context, userID int, p Project) (*Project, error) {
	if p.Name == "" {
		return nil, ErrInvalidName
	}

	p.UserID = userID
	p.TracksCount = len(p.Tracks)
	p.PhotosCount = len(p.Photos)

	stored, err := s.repo.Create(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.log.Info("project stored",
		"name", stored.Name,
		"user_id", stored.UserID,
		"tracks", stored.TracksCount,
		"photos", stored.PhotosCount,
	)
	return stored, nil
}

func (s *Service) SaveBlob(ctx context.Context, userID int, path string, data []byte) error {
	if path == "" {
		return ErrInvalidName
	}
	if err := s.repo.SaveBlob(ctx, userID, path, data); err != nil {
		return fmt.Errorf("save blob: %w", err)
	}
	return nil
}

func (s *Service) GetBlob(ctx context.Context, userID int, path string) ([]byte, error) {
	if path == "" {
		return nil, ErrBlobNotFound
	}
	return s.repo.GetBlob(ctx, userID, path)
}
