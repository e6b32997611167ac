package client

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"geotrail/internal/domain/geo"
)

var (
	ErrNotOpen       = errors.New("storage not open")
	ErrStoreBlocked  = errors.New("storage blocked by another session")
	ErrTrackNotFound = errors.New("track not found")
	ErrPhotoNotFound = errors.New("photo not found")
)

const lastPositionKey = "lastPosition"

// schemaSteps are applied in order on top of PRAGMA user_version.
// Steps only ever create missing tables and indexes: a collection that
// already exists is left untouched when the schema version advances,
// so migrations stay additive.
var schemaSteps = []string{
	`
	CREATE TABLE IF NOT EXISTS tracks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		points TEXT NOT NULL,
		total_points INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS photos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		data BLOB,
		timestamp DATETIME NOT NULL,
		lat REAL,
		lng REAL,
		direction REAL,
		text TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		zoom INTEGER NOT NULL,
		timestamp DATETIME NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS external_datasets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		data TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS external_photo_assets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		import_id TEXT NOT NULL,
		file_name TEXT NOT NULL,
		blob BLOB NOT NULL,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assets_import_id ON external_photo_assets(import_id);
	`,
}

// SQLiteStorage is the local embedded store owning every client-side
// collection. It has an explicit open/close lifecycle; every operation
// fails with ErrNotOpen before Open.
type SQLiteStorage struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
	log  *slog.Logger

	resetRetries int
	resetDelay   time.Duration
}

func NewSQLiteStorage(path string, log *slog.Logger, resetRetries int, resetDelay time.Duration) *SQLiteStorage {
	return &SQLiteStorage{
		path:         path,
		log:          log.With("component", "storage"),
		resetRetries: resetRetries,
		resetDelay:   resetDelay,
	}
}

func (s *SQLiteStorage) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite3", s.path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := migrateSchema(db); err != nil {
		db.Close()
		return fmt.Errorf("migrate schema: %w", err)
	}

	s.db = db
	return nil
}

func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStorage) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrNotOpen
	}
	return s.db, nil
}

func migrateSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for i := version; i < len(schemaSteps); i++ {
		if _, err := db.Exec(schemaSteps[i]); err != nil {
			return fmt.Errorf("schema step %d: %w", i+1, err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("bump schema version: %w", err)
		}
	}
	return nil
}

// Tracks

// AddTrack inserts a new track, or replaces the row when the track
// already carries an id. TotalPoints is always written as len(Points).
func (s *SQLiteStorage) AddTrack(t *geo.Track) (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	points, err := json.Marshal(t.Points)
	if err != nil {
		return 0, fmt.Errorf("encode points: %w", err)
	}
	t.TotalPoints = len(t.Points)

	if t.ID > 0 {
		_, err := db.Exec(`
			INSERT OR REPLACE INTO tracks (id, timestamp, points, total_points)
			VALUES (?, ?, ?, ?)
		`, t.ID, t.Timestamp.Format(time.RFC3339Nano), string(points), t.TotalPoints)
		if err != nil {
			return 0, fmt.Errorf("replace track: %w", err)
		}
		return t.ID, nil
	}

	res, err := db.Exec(`
		INSERT INTO tracks (timestamp, points, total_points)
		VALUES (?, ?, ?)
	`, t.Timestamp.Format(time.RFC3339Nano), string(points), t.TotalPoints)
	if err != nil {
		return 0, fmt.Errorf("insert track: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("track id: %w", err)
	}
	t.ID = id
	return id, nil
}

func (s *SQLiteStorage) Track(id int64) (*geo.Track, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(`SELECT id, timestamp, points, total_points FROM tracks WHERE id = ?`, id)
	t, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get track: %w", err)
	}
	return t, nil
}

func (s *SQLiteStorage) Tracks() ([]geo.Track, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT id, timestamp, points, total_points FROM tracks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	tracks := []geo.Track{}
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, *t)
	}
	return tracks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (*geo.Track, error) {
	var t geo.Track
	var timestamp, points string
	if err := row.Scan(&t.ID, &timestamp, &points, &t.TotalPoints); err != nil {
		return nil, err
	}
	t.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
	if err := json.Unmarshal([]byte(points), &t.Points); err != nil {
		return nil, fmt.Errorf("decode points: %w", err)
	}
	return &t, nil
}

// AppendTrackPoint appends one point to a track inside a transaction,
// keeping total_points consistent with the stored array.
func (s *SQLiteStorage) AppendTrackPoint(id int64, p geo.LatLng) (*geo.Track, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT id, timestamp, points, total_points FROM tracks WHERE id = ?`, id)
	t, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load track: %w", err)
	}

	t.Points = append(t.Points, p)
	t.TotalPoints = len(t.Points)
	points, err := json.Marshal(t.Points)
	if err != nil {
		return nil, fmt.Errorf("encode points: %w", err)
	}

	if _, err := tx.Exec(`UPDATE tracks SET points = ?, total_points = ? WHERE id = ?`,
		string(points), t.TotalPoints, id); err != nil {
		return nil, fmt.Errorf("append point: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append: %w", err)
	}
	return t, nil
}

// ReplaceTrackPoints swaps a track's whole point array.
func (s *SQLiteStorage) ReplaceTrackPoints(id int64, pts []geo.LatLng) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	points, err := json.Marshal(pts)
	if err != nil {
		return fmt.Errorf("encode points: %w", err)
	}
	res, err := db.Exec(`UPDATE tracks SET points = ?, total_points = ? WHERE id = ?`,
		string(points), len(pts), id)
	if err != nil {
		return fmt.Errorf("replace points: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTrackNotFound
	}
	return nil
}

// Photos

func (s *SQLiteStorage) AddPhoto(p *geo.Photo) (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	var lat, lng any
	if p.Location != nil {
		lat, lng = p.Location.Lat, p.Location.Lng
	}
	var direction any
	if p.Direction != nil {
		direction = *p.Direction
	}

	res, err := db.Exec(`
		INSERT INTO photos (data, timestamp, lat, lng, direction, text)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.Data, p.Timestamp.Format(time.RFC3339Nano), lat, lng, direction, p.Text)
	if err != nil {
		return 0, fmt.Errorf("insert photo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("photo id: %w", err)
	}
	p.ID = id
	return id, nil
}

func (s *SQLiteStorage) Photo(id int64) (*geo.Photo, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(`SELECT id, data, timestamp, lat, lng, direction, text FROM photos WHERE id = ?`, id)
	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return p, nil
}

func (s *SQLiteStorage) Photos() ([]geo.Photo, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT id, data, timestamp, lat, lng, direction, text FROM photos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	photos := []geo.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, *p)
	}
	return photos, rows.Err()
}

func scanPhoto(row rowScanner) (*geo.Photo, error) {
	var p geo.Photo
	var timestamp string
	var lat, lng, direction sql.NullFloat64
	if err := row.Scan(&p.ID, &p.Data, &timestamp, &lat, &lng, &direction, &p.Text); err != nil {
		return nil, err
	}
	p.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
	if lat.Valid && lng.Valid {
		p.Location = &geo.LatLng{Lat: lat.Float64, Lng: lng.Float64}
	}
	if direction.Valid {
		p.Direction = &direction.Float64
	}
	return &p, nil
}

// UpdatePhotoMeta updates a photo's caption and/or direction by id.
// Nil arguments leave the corresponding attribute unchanged.
func (s *SQLiteStorage) UpdatePhotoMeta(id int64, text *string, direction *float64) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	p, err := s.Photo(id)
	if err != nil {
		return err
	}
	if text != nil {
		p.Text = *text
	}
	if direction != nil {
		p.Direction = direction
	}

	var dir any
	if p.Direction != nil {
		dir = *p.Direction
	}
	if _, err := db.Exec(`UPDATE photos SET text = ?, direction = ? WHERE id = ?`,
		p.Text, dir, id); err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	return nil
}

// External datasets and assets (append-only)

func (s *SQLiteStorage) AddExternalDataset(ds *geo.ExternalDataset) (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	data, err := json.Marshal(ds.Data)
	if err != nil {
		return 0, fmt.Errorf("encode dataset: %w", err)
	}
	res, err := db.Exec(`
		INSERT INTO external_datasets (type, name, data, timestamp)
		VALUES (?, ?, ?, ?)
	`, ds.Type, ds.Name, string(data), ds.Timestamp.Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert dataset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("dataset id: %w", err)
	}
	ds.ID = id
	return id, nil
}

func (s *SQLiteStorage) ExternalDatasets() ([]geo.ExternalDataset, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT id, type, name, data, timestamp FROM external_datasets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	datasets := []geo.ExternalDataset{}
	for rows.Next() {
		var ds geo.ExternalDataset
		var data, timestamp string
		if err := rows.Scan(&ds.ID, &ds.Type, &ds.Name, &data, &timestamp); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &ds.Data); err != nil {
			return nil, fmt.Errorf("decode dataset: %w", err)
		}
		ds.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		datasets = append(datasets, ds)
	}
	return datasets, rows.Err()
}

func (s *SQLiteStorage) AddExternalPhotoAsset(asset *geo.ExternalPhotoAsset) (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	res, err := db.Exec(`
		INSERT INTO external_photo_assets (import_id, file_name, blob, timestamp)
		VALUES (?, ?, ?, ?)
	`, asset.ImportID, asset.FileName, asset.Blob, asset.Timestamp.Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert asset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("asset id: %w", err)
	}
	asset.ID = id
	return id, nil
}

// ExternalPhotoAsset looks an asset up by its (importID, fileName)
// secondary key. A missing asset is nil, not an error.
func (s *SQLiteStorage) ExternalPhotoAsset(importID, fileName string) (*geo.ExternalPhotoAsset, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var asset geo.ExternalPhotoAsset
	var timestamp string
	err = db.QueryRow(`
		SELECT id, import_id, file_name, blob, timestamp
		FROM external_photo_assets
		WHERE import_id = ? AND file_name = ?
	`, importID, fileName).Scan(&asset.ID, &asset.ImportID, &asset.FileName, &asset.Blob, &timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	asset.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
	return &asset, nil
}

func (s *SQLiteStorage) ExternalPhotoAssets(importID string) ([]geo.ExternalPhotoAsset, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT id, import_id, file_name, blob, timestamp
		FROM external_photo_assets
		WHERE import_id = ?
		ORDER BY id
	`, importID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	assets := []geo.ExternalPhotoAsset{}
	for rows.Next() {
		var asset geo.ExternalPhotoAsset
		var timestamp string
		if err := rows.Scan(&asset.ID, &asset.ImportID, &asset.FileName, &asset.Blob, &timestamp); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		asset.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// Settings

// LastPosition returns the saved map viewport, nil when none was ever
// saved.
func (s *SQLiteStorage) LastPosition() (*geo.LastPosition, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var pos geo.LastPosition
	var timestamp string
	err = db.QueryRow(`SELECT lat, lng, zoom, timestamp FROM settings WHERE key = ?`, lastPositionKey).
		Scan(&pos.Lat, &pos.Lng, &pos.Zoom, &timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last position: %w", err)
	}
	pos.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
	return &pos, nil
}

func (s *SQLiteStorage) SaveLastPosition(pos geo.LastPosition) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO settings (key, lat, lng, zoom, timestamp)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET lat = excluded.lat, lng = excluded.lng,
			zoom = excluded.zoom, timestamp = excluded.timestamp
	`, lastPositionKey, pos.Lat, pos.Lng, pos.Zoom, pos.Timestamp.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save last position: %w", err)
	}
	return nil
}

// Lifecycle resets

// ClearRouteData empties the track and photo collections only.
// External datasets and photo assets are untouched. There is no
// cross-collection transaction: a crash between the two deletes can
// leave one collection cleared and the other not.
func (s *SQLiteStorage) ClearRouteData() error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	if _, err := db.Exec(`DELETE FROM tracks`); err != nil {
		return fmt.Errorf("clear tracks: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM photos`); err != nil {
		return fmt.Errorf("clear photos: %w", err)
	}
	return nil
}

// FullReset deletes the whole database file and recreates an empty
// schema, re-seeding the last position captured just before deletion
// (or the default when none existed). A blocked deletion is retried
// with backoff before surfacing ErrStoreBlocked.
func (s *SQLiteStorage) FullReset() error {
	pos := geo.DefaultLastPosition()
	if prev, err := s.LastPosition(); err == nil && prev != nil {
		pos = *prev
	}

	if err := s.Close(); err != nil {
		s.log.Warn("close before reset", "error", err)
	}
	if err := s.removeWithRetry(); err != nil {
		return err
	}
	if err := s.Open(); err != nil {
		return fmt.Errorf("reopen after reset: %w", err)
	}
	return s.SaveLastPosition(pos)
}

func (s *SQLiteStorage) removeWithRetry() error {
	var lastErr error
	for attempt := 0; attempt <= s.resetRetries; attempt++ {
		if attempt > 0 {
			s.log.Debug("retrying blocked delete", "attempt", attempt)
			time.Sleep(s.resetDelay)
		}
		err := os.Remove(s.path)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			// WAL side files are best-effort; they are recreated on open.
			os.Remove(s.path + "-wal")
			os.Remove(s.path + "-shm")
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", ErrStoreBlocked, lastErr)
}
