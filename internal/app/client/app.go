package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"geotrail/internal/app/client/config"
	"geotrail/internal/codec"
	"geotrail/internal/domain/geo"
)

var ErrNoActiveSession = errors.New("no active recording session")

// App wires the client together: configuration, local store, remote
// API client and sync engine, plus the in-memory recording session
// state the UI layer drives.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	storage *SQLiteStorage
	api     *apiClient
	sync    *SyncService

	mu            sync.Mutex
	token         string
	activeTrackID int64
	sessionPoints int
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	storage := NewSQLiteStorage(cfg.DataPath, log,
		cfg.ResetRetries, time.Duration(cfg.ResetDelayMS)*time.Millisecond)
	if err := storage.Open(); err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	api := newAPIClient(cfg, log)

	app := &App{
		cfg:     cfg,
		log:     log,
		storage: storage,
		api:     api,
	}
	app.sync = NewSyncService(storage, api, app.IsAuthenticated, cfg.NameAttempts, log)
	app.loadToken()
	return app, nil
}

func (a *App) Close() error {
	return a.storage.Close()
}

func (a *App) Storage() *SQLiteStorage { return a.storage }
func (a *App) Sync() *SyncService      { return a.sync }

func (a *App) CheckConnection(ctx context.Context) error {
	return a.api.Health(ctx)
}

// Authentication

func (a *App) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token != ""
}

func (a *App) Register(ctx context.Context, login, password string) error {
	return a.api.Register(ctx, login, password)
}

func (a *App) Login(ctx context.Context, login, password string) error {
	token, err := a.api.Login(ctx, login, password)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.token = token
	a.mu.Unlock()

	if err := os.WriteFile(a.cfg.TokenPath, []byte(token), 0600); err != nil {
		a.log.Warn("persist token", "error", err)
	}
	return nil
}

func (a *App) loadToken() {
	data, err := os.ReadFile(a.cfg.TokenPath)
	if err != nil {
		return
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return
	}
	a.token = token
	a.api.SetToken(token)
}

// Recording session

// StartSession creates a fresh empty track and makes it the active
// recording target.
func (a *App) StartSession() (*geo.Track, error) {
	track := &geo.Track{Timestamp: time.Now()}
	if _, err := a.storage.AddTrack(track); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	a.mu.Lock()
	a.activeTrackID = track.ID
	a.sessionPoints = 0
	a.mu.Unlock()

	a.log.Info("recording session started", "track_id", track.ID)
	return track, nil
}

// RecordTrackPoint appends one sampled point to the active track.
func (a *App) RecordTrackPoint(p geo.LatLng) (*geo.Track, error) {
	a.mu.Lock()
	trackID := a.activeTrackID
	a.mu.Unlock()

	if trackID == 0 {
		return nil, ErrNoActiveSession
	}

	track, err := a.storage.AppendTrackPoint(trackID, p)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.sessionPoints = track.TotalPoints
	a.mu.Unlock()
	return track, nil
}

// CapturePhoto stores a captured photo. The id is always assigned by
// the store, also for photos restored from an interchange document.
func (a *App) CapturePhoto(p *geo.Photo) (int64, error) {
	p.ID = 0
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}
	return a.storage.AddPhoto(p)
}

// AnnotatePhoto updates caption and/or direction of an existing photo.
func (a *App) AnnotatePhoto(id int64, text *string, direction *float64) error {
	return a.storage.UpdatePhotoMeta(id, text, direction)
}

// Interchange

func (a *App) ExportKMZ() ([]byte, error) {
	tracks, photos, err := a.routeData()
	if err != nil {
		return nil, err
	}
	return codec.ExportKMZ(tracks, photos)
}

func (a *App) ExportGeoJSON() ([]byte, error) {
	tracks, photos, err := a.routeData()
	if err != nil {
		return nil, err
	}
	return codec.ExportGeoJSON(tracks, photos)
}

func (a *App) routeData() ([]geo.Track, []geo.Photo, error) {
	tracks, err := a.storage.Tracks()
	if err != nil {
		return nil, nil, fmt.Errorf("read tracks: %w", err)
	}
	photos, err := a.storage.Photos()
	if err != nil {
		return nil, nil, fmt.Errorf("read photos: %w", err)
	}
	return tracks, photos, nil
}

// Import classifies and converts an interchange document. The foreign
// path persists through the store on its own; a native result is
// returned unpersisted for the caller to apply via ReplaceSession.
func (a *App) Import(name string, data []byte) (*codec.Result, error) {
	return codec.Import(name, data, a.storage)
}

// ReplaceSession destructively replaces the route log with a native
// import result.
func (a *App) ReplaceSession(res *codec.Result) error {
	if res.Kind != codec.KindNative {
		return fmt.Errorf("cannot replace session with %s import", res.Kind)
	}
	if err := a.ClearRouteData(); err != nil {
		return err
	}
	for i := range res.Tracks {
		track := res.Tracks[i]
		track.ID = 0
		if _, err := a.storage.AddTrack(&track); err != nil {
			return fmt.Errorf("restore track: %w", err)
		}
	}
	for i := range res.Photos {
		photo := res.Photos[i]
		photo.ID = 0
		if _, err := a.storage.AddPhoto(&photo); err != nil {
			return fmt.Errorf("restore photo: %w", err)
		}
	}
	return nil
}

// Resets

// ClearRouteData empties tracks and photos and ends the recording
// session. External datasets survive.
func (a *App) ClearRouteData() error {
	if err := a.storage.ClearRouteData(); err != nil {
		return err
	}
	a.resetSession()
	return nil
}

// FullReset recreates the whole store. Callers must not run two
// resets concurrently; the store does not detect that itself.
func (a *App) FullReset() error {
	if err := a.storage.FullReset(); err != nil {
		return err
	}
	a.resetSession()
	return nil
}

func (a *App) resetSession() {
	a.mu.Lock()
	a.activeTrackID = 0
	a.sessionPoints = 0
	a.mu.Unlock()
}

func (a *App) LastPosition() (*geo.LastPosition, error) {
	return a.storage.LastPosition()
}

func (a *App) SaveLastPosition(pos geo.LastPosition) error {
	return a.storage.SaveLastPosition(pos)
}
