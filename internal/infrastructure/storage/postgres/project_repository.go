package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"geotrail/internal/domain/project"
)

// ProjectRepository stores project records as JSONB documents and photo
// blobs as bytea rows keyed by (user_id, path).
type ProjectRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewProjectRepository(pool *pgxpool.Pool, log *slog.Logger) *ProjectRepository {
	return &ProjectRepository{
		pool: pool,
		log:  log.With("component", "project_repository"),
	}
}

func (r *ProjectRepository) List(ctx context.Context, userID int) ([]project.Project, error) {
	const query = `
		SELECT name, user_id, start_time, created_at, tracks, photos,
		       tracks_count, photos_count
		FROM projects
		WHERE user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("failed to list projects", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		p, err := r.scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}

	return projects, rows.Err()
}

func (r *ProjectRepository) Get(ctx context.Context, userID int, name string) (*project.Project, error) {
	const query = `
		SELECT name, user_id, start_time, created_at, tracks, photos,
		       tracks_count, photos_count
		FROM projects
		WHERE user_id = $1 AND name = $2`

	row := r.pool.QueryRow(ctx, query, userID, name)

	p, err := r.scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrNotFound
		}
		r.log.Error("failed to get project",
			"name", name, "user_id", userID, "error", err)
		return nil, fmt.Errorf("get project: %w", err)
	}

	return p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) (*project.Project, error) {
	const query = `
		INSERT INTO projects (user_id, name, start_time, tracks, photos,
		                      tracks_count, photos_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		p.UserID, p.Name, p.StartTime, p.Tracks, p.Photos,
		p.TracksCount, p.PhotosCount,
	).Scan(&p.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("project %q already exists", p.Name)
		}
		r.log.Error("failed to create project",
			"name", p.Name, "user_id", p.UserID, "error", err)
		return nil, fmt.Errorf("create project: %w", err)
	}

	return p, nil
}

// SaveBlob upserts so a retried upload after a partial publish never
// fails on the second attempt.
func (r *ProjectRepository) SaveBlob(ctx context.Context, userID int, path string, data []byte) error {
	const query = `
		INSERT INTO blobs (user_id, path, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, path) DO UPDATE SET data = EXCLUDED.data`

	if _, err := r.pool.Exec(ctx, query, userID, path, data); err != nil {
		r.log.Error("failed to save blob", "path", path, "user_id", userID, "error", err)
		return fmt.Errorf("save blob: %w", err)
	}
	return nil
}

func (r *ProjectRepository) GetBlob(ctx context.Context, userID int, path string) ([]byte, error) {
	var data []byte
	err := r.pool.QueryRow(ctx,
		`SELECT data FROM blobs WHERE user_id = $1 AND path = $2`,
		userID, path).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrBlobNotFound
		}
		return nil, fmt.Errorf("get blob: %w", err)
	}
	return data, nil
}

func (r *ProjectRepository) scanProject(row pgx.Row) (*project.Project, error) {
	var p project.Project
	err := row.Scan(
		&p.Name, &p.UserID, &p.StartTime, &p.CreatedAt,
		&p.Tracks, &p.Photos, &p.TracksCount, &p.PhotosCount,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
