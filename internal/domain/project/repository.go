package project

import "context"

type Repository interface {
	List(ctx context.Context, userID int) ([]Project, error)
	Get(ctx context.Context, userID int, name string) (*Project, error)
	Create(ctx context.Context, p *Project) (*Project, error)
	SaveBlob(ctx context.Context, userID int, path string, data []byte) error
	GetBlob(ctx context.Context, userID int, path string) ([]byte, error)
}
