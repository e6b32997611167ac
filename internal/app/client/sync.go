package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/exp/slog"

	"geotrail/internal/domain/geo"
	"geotrail/internal/domain/project"
)

// remoteAPI is the slice of the API client the sync engine depends on.
type remoteAPI interface {
	ProjectExists(ctx context.Context, name string) (bool, error)
	Projects(ctx context.Context) ([]project.Project, error)
	CreateProject(ctx context.Context, p project.Project) (*project.Project, error)
	UploadBlob(ctx context.Context, path string, data []byte) error
	DownloadBlob(ctx context.Context, path string) ([]byte, error)
}

// localStore is the slice of the local store the sync engine reads and
// writes. It borrows the store per operation and never caches rows.
type localStore interface {
	Tracks() ([]geo.Track, error)
	Photos() ([]geo.Photo, error)
	AddTrack(t *geo.Track) (int64, error)
	AddPhoto(p *geo.Photo) (int64, error)
	ClearRouteData() error
}

// SyncService publishes the local dataset as uniquely named remote
// projects and restores published projects back into the local store.
type SyncService struct {
	storage      localStore
	api          remoteAPI
	log          *slog.Logger
	nameAttempts int
	authed       func() bool
}

func NewSyncService(storage localStore, api remoteAPI, authed func() bool, nameAttempts int, log *slog.Logger) *SyncService {
	return &SyncService{
		storage:      storage,
		api:          api,
		log:          log.With("component", "sync"),
		nameAttempts: nameAttempts,
		authed:       authed,
	}
}

// PublishResult reports the resolved project name and the per-photo
// upload accounting. Failures never abort a publish; the caller
// presents the count to the user.
type PublishResult struct {
	Name           string
	UploadedPhotos int
	FailedPhotos   int
}

// LoadResult reports how much of a remote project made it back into
// the local store.
type LoadResult struct {
	Tracks        int
	Photos        int
	SkippedPhotos int
}

// uploadAccumulator is the fold state of the sequential photo upload
// loop.
type uploadAccumulator struct {
	docs     []project.PhotoDoc
	failures int
}

// Publish pushes the full local dataset to a remote project whose name
// does not collide with an existing one. Photo blobs are uploaded
// strictly sequentially; individual failures are counted and the
// project record is written with whichever photos succeeded.
func (s *SyncService) Publish(ctx context.Context, baseName string) (*PublishResult, error) {
	if !s.authed() {
		return nil, project.ErrAuthRequired
	}
	if baseName == "" {
		return nil, project.ErrInvalidName
	}

	name, err := s.resolveName(ctx, baseName)
	if err != nil {
		return nil, err
	}

	tracks, err := s.storage.Tracks()
	if err != nil {
		return nil, fmt.Errorf("read tracks: %w", err)
	}
	photos, err := s.storage.Photos()
	if err != nil {
		return nil, fmt.Errorf("read photos: %w", err)
	}

	trackDocs := make([]project.TrackDoc, 0, len(tracks))
	startTime := time.Now()
	for _, t := range tracks {
		if !t.Timestamp.IsZero() && t.Timestamp.Before(startTime) {
			startTime = t.Timestamp
		}
		trackDocs = append(trackDocs, project.TrackDoc{
			Timestamp: t.Timestamp,
			Points:    t.Points,
		})
	}

	acc := uploadAccumulator{}
	for _, p := range photos {
		path := blobPath(name, p)
		if len(p.Data) == 0 {
			s.log.Warn("photo has no binary data, skipping upload", "photo_id", p.ID)
			acc.failures++
			continue
		}
		if err := s.api.UploadBlob(ctx, path, p.Data); err != nil {
			s.log.Warn("photo upload failed", "photo_id", p.ID, "path", path, "error", err)
			acc.failures++
			continue
		}
		acc.docs = append(acc.docs, project.PhotoDoc{
			BlobPath:  path,
			Timestamp: p.Timestamp,
			Location:  p.Location,
			Direction: p.Direction,
			Text:      p.Text,
		})
	}

	record := project.Project{
		Name:        name,
		StartTime:   startTime,
		Tracks:      trackDocs,
		Photos:      acc.docs,
		TracksCount: len(trackDocs),
		PhotosCount: len(acc.docs),
	}
	if _, err := s.api.CreateProject(ctx, record); err != nil {
		return nil, fmt.Errorf("write project record: %w", err)
	}

	s.log.Info("project published",
		"name", name,
		"tracks", len(trackDocs),
		"photos_uploaded", len(acc.docs),
		"photos_failed", acc.failures,
	)
	return &PublishResult{
		Name:           name,
		UploadedPhotos: len(acc.docs),
		FailedPhotos:   acc.failures,
	}, nil
}

// resolveName probes the remote store for a non-colliding name,
// appending _2, _3, … to the base up to the configured attempt cap.
// A denied probe counts as "absent": if that was wrong, the write
// fails on its own. Re-running publish after a partial failure thus
// yields a sibling name, never an overwrite.
func (s *SyncService) resolveName(ctx context.Context, baseName string) (string, error) {
	for attempt := 1; attempt <= s.nameAttempts; attempt++ {
		candidate := baseName
		if attempt > 1 {
			candidate = fmt.Sprintf("%s_%d", baseName, attempt)
		}

		exists, err := s.api.ProjectExists(ctx, candidate)
		if errors.Is(err, ErrPermissionDenied) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("probe project name: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", project.ErrNameExhausted
}

func blobPath(projectName string, p geo.Photo) string {
	return fmt.Sprintf("%s/photo_%d.jpg", projectName, p.Timestamp.UnixNano())
}

// Projects lists every remote project, newest first. The sort happens
// client-side: the store is queried unordered so the server needs no
// index for it.
func (s *SyncService) Projects(ctx context.Context) ([]project.Project, error) {
	projects, err := s.api.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

// Load replaces the route-log portion of the local store with a remote
// project: tracks are re-inserted as fresh rows (remote ids are not
// stable across re-publishes), photo blobs are downloaded back into
// inline data. Download failures skip the photo, never the load.
// Externally imported datasets are untouched.
func (s *SyncService) Load(ctx context.Context, p project.Project) (*LoadResult, error) {
	if err := s.storage.ClearRouteData(); err != nil {
		return nil, fmt.Errorf("clear route data: %w", err)
	}

	res := &LoadResult{}
	for _, td := range p.Tracks {
		track := geo.Track{
			Timestamp:   td.Timestamp,
			Points:      td.Points,
			TotalPoints: len(td.Points),
		}
		if _, err := s.storage.AddTrack(&track); err != nil {
			return nil, fmt.Errorf("restore track: %w", err)
		}
		res.Tracks++
	}

	for _, pd := range p.Photos {
		data, err := s.api.DownloadBlob(ctx, pd.BlobPath)
		if err != nil {
			s.log.Warn("photo download failed, skipping", "path", pd.BlobPath, "error", err)
			res.SkippedPhotos++
			continue
		}
		photo := geo.Photo{
			Data:      data,
			Timestamp: pd.Timestamp,
			Location:  pd.Location,
			Direction: pd.Direction,
			Text:      pd.Text,
		}
		if _, err := s.storage.AddPhoto(&photo); err != nil {
			s.log.Warn("photo restore failed, skipping", "path", pd.BlobPath, "error", err)
			res.SkippedPhotos++
			continue
		}
		res.Photos++
	}

	s.log.Info("project loaded",
		"name", p.Name,
		"tracks", res.Tracks,
		"photos", res.Photos,
		"skipped_photos", res.SkippedPhotos,
	)
	return res, nil
}
