package client

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"geotrail/internal/domain/geo"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trail.db")
	s := NewSQLiteStorage(path, slog.Default(), 2, 10*time.Millisecond)
	require.NoError(t, s.Open())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorageNotOpen(t *testing.T) {
	s := NewSQLiteStorage(filepath.Join(t.TempDir(), "trail.db"), slog.Default(), 0, 0)

	_, err := s.Tracks()
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = s.AddTrack(&geo.Track{})
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = s.LastPosition()
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, s.ClearRouteData(), ErrNotOpen)
}

func TestTrackLifecycle(t *testing.T) {
	s := newTestStorage(t)

	track := &geo.Track{Timestamp: time.Now()}
	id, err := s.AddTrack(track)
	require.NoError(t, err)
	assert.Positive(t, id)

	// Ids increase monotonically.
	second := &geo.Track{Timestamp: time.Now()}
	id2, err := s.AddTrack(second)
	require.NoError(t, err)
	assert.Greater(t, id2, id)

	updated, err := s.AppendTrackPoint(id, geo.LatLng{Lat: 47.0, Lng: 8.0})
	require.NoError(t, err)
	updated, err = s.AppendTrackPoint(id, geo.LatLng{Lat: 47.1, Lng: 8.1})
	require.NoError(t, err)

	assert.Equal(t, 2, updated.TotalPoints)
	assert.Len(t, updated.Points, updated.TotalPoints)
	assert.Equal(t, geo.LatLng{Lat: 47.0, Lng: 8.0}, updated.Points[0], "point order is append order")

	stored, err := s.Track(id)
	require.NoError(t, err)
	assert.Equal(t, updated.Points, stored.Points)
	assert.Equal(t, len(stored.Points), stored.TotalPoints)

	replacement := []geo.LatLng{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}, {Lat: 5, Lng: 6}}
	require.NoError(t, s.ReplaceTrackPoints(id, replacement))
	stored, err = s.Track(id)
	require.NoError(t, err)
	assert.Equal(t, replacement, stored.Points)
	assert.Equal(t, 3, stored.TotalPoints)

	_, err = s.AppendTrackPoint(9999, geo.LatLng{})
	assert.ErrorIs(t, err, ErrTrackNotFound)
	assert.ErrorIs(t, s.ReplaceTrackPoints(9999, nil), ErrTrackNotFound)
}

func TestPhotoLifecycle(t *testing.T) {
	s := newTestStorage(t)

	dir := 42.0
	photo := &geo.Photo{
		Data:      []byte("jpeg"),
		Timestamp: time.Now(),
		Location:  &geo.LatLng{Lat: 52.52, Lng: 13.405},
		Direction: &dir,
		Text:      "tower",
	}
	id, err := s.AddPhoto(photo)
	require.NoError(t, err)

	stored, err := s.Photo(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), stored.Data)
	require.NotNil(t, stored.Location)
	assert.InDelta(t, 52.52, stored.Location.Lat, 1e-9)
	require.NotNil(t, stored.Direction)
	assert.InDelta(t, 42.0, *stored.Direction, 1e-9)

	caption := "tv tower"
	newDir := 180.0
	require.NoError(t, s.UpdatePhotoMeta(id, &caption, &newDir))
	stored, err = s.Photo(id)
	require.NoError(t, err)
	assert.Equal(t, "tv tower", stored.Text)
	assert.InDelta(t, 180.0, *stored.Direction, 1e-9)

	// Nil arguments leave attributes unchanged.
	require.NoError(t, s.UpdatePhotoMeta(id, nil, nil))
	stored, err = s.Photo(id)
	require.NoError(t, err)
	assert.Equal(t, "tv tower", stored.Text)
	assert.InDelta(t, 180.0, *stored.Direction, 1e-9)

	assert.ErrorIs(t, s.UpdatePhotoMeta(9999, &caption, nil), ErrPhotoNotFound)

	// A photo without location or direction round-trips as nils.
	bare := &geo.Photo{Timestamp: time.Now()}
	bareID, err := s.AddPhoto(bare)
	require.NoError(t, err)
	stored, err = s.Photo(bareID)
	require.NoError(t, err)
	assert.Nil(t, stored.Location)
	assert.Nil(t, stored.Direction)
}

func TestExternalAssetLookup(t *testing.T) {
	s := newTestStorage(t)

	asset := &geo.ExternalPhotoAsset{
		ImportID:  "import-1",
		FileName:  "images/pic.jpg",
		Blob:      []byte("blob"),
		Timestamp: time.Now(),
	}
	_, err := s.AddExternalPhotoAsset(asset)
	require.NoError(t, err)

	found, err := s.ExternalPhotoAsset("import-1", "images/pic.jpg")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []byte("blob"), found.Blob)

	// Lookups are keyed by (importId, fileName); misses are nil, not errors.
	missing, err := s.ExternalPhotoAsset("import-2", "images/pic.jpg")
	require.NoError(t, err)
	assert.Nil(t, missing)
	missing, err = s.ExternalPhotoAsset("import-1", "images/other.jpg")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := s.ExternalPhotoAssets("import-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestClearRouteDataLeavesExternals(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.AddTrack(&geo.Track{Timestamp: time.Now(), Points: []geo.LatLng{{Lat: 1, Lng: 1}}})
	require.NoError(t, err)
	_, err = s.AddPhoto(&geo.Photo{Timestamp: time.Now()})
	require.NoError(t, err)
	_, err = s.AddExternalDataset(&geo.ExternalDataset{
		Type:      "geojson",
		Name:      "imported.geojson",
		Data:      geo.FeatureCollection{Type: "FeatureCollection"},
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, s.ClearRouteData())

	tracks, err := s.Tracks()
	require.NoError(t, err)
	assert.Empty(t, tracks)
	photos, err := s.Photos()
	require.NoError(t, err)
	assert.Empty(t, photos)

	datasets, err := s.ExternalDatasets()
	require.NoError(t, err)
	assert.Len(t, datasets, 1, "external datasets must survive a route-log clear")
	assert.Equal(t, "imported.geojson", datasets[0].Name)
}

func TestLastPosition(t *testing.T) {
	s := newTestStorage(t)

	pos, err := s.LastPosition()
	require.NoError(t, err)
	assert.Nil(t, pos, "missing settings row reads as nil")

	require.NoError(t, s.SaveLastPosition(geo.LastPosition{Lat: 59.33, Lng: 18.07, Zoom: 11, Timestamp: time.Now()}))
	require.NoError(t, s.SaveLastPosition(geo.LastPosition{Lat: 59.34, Lng: 18.08, Zoom: 12, Timestamp: time.Now()}))

	pos, err = s.LastPosition()
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.InDelta(t, 59.34, pos.Lat, 1e-9)
	assert.Equal(t, 12, pos.Zoom, "settings row is upserted, not duplicated")
}

func TestFullResetPreservesLastPosition(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.AddTrack(&geo.Track{Timestamp: time.Now(), Points: []geo.LatLng{{Lat: 1, Lng: 1}}})
	require.NoError(t, err)
	_, err = s.AddExternalDataset(&geo.ExternalDataset{Type: "geojson", Name: "x", Timestamp: time.Now()})
	require.NoError(t, err)
	require.NoError(t, s.SaveLastPosition(geo.LastPosition{Lat: 35.68, Lng: 139.69, Zoom: 14, Timestamp: time.Now()}))

	require.NoError(t, s.FullReset())

	tracks, err := s.Tracks()
	require.NoError(t, err)
	assert.Empty(t, tracks)
	datasets, err := s.ExternalDatasets()
	require.NoError(t, err)
	assert.Empty(t, datasets, "full reset deletes everything")

	pos, err := s.LastPosition()
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.InDelta(t, 35.68, pos.Lat, 1e-9)
	assert.InDelta(t, 139.69, pos.Lng, 1e-9)
}

func TestFullResetSeedsDefaultPosition(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.FullReset())

	pos, err := s.LastPosition()
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.InDelta(t, geo.DefaultLat, pos.Lat, 1e-9)
	assert.InDelta(t, geo.DefaultLng, pos.Lng, 1e-9)
	assert.Equal(t, geo.DefaultZoom, pos.Zoom)
}

func TestSchemaMigrationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trail.db")
	s := NewSQLiteStorage(path, slog.Default(), 0, 0)
	require.NoError(t, s.Open())

	_, err := s.AddTrack(&geo.Track{Timestamp: time.Now(), Points: []geo.LatLng{{Lat: 1, Lng: 1}}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening replays nothing destructive: existing rows survive.
	require.NoError(t, s.Open())
	defer s.Close()
	tracks, err := s.Tracks()
	require.NoError(t, err)
	assert.Len(t, tracks, 1)
}
