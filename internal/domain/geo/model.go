package geo

import (
	"time"
)

// Default map position used when the settings row is missing,
// e.g. right after a full reset of a fresh install.
const (
	DefaultLat  = 52.5200
	DefaultLng  = 13.4050
	DefaultZoom = 13
)

// LatLng is a geographic coordinate pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Track is one continuous recorded path. Points are kept in the order
// they were recorded and are never reordered.
type Track struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Points      []LatLng  `json:"points"`
	TotalPoints int       `json:"total_points"`
}

// Photo is one geo-tagged captured image. Data is nil when the photo
// only references a remote asset (e.g. right after a project load that
// skipped the blob download).
type Photo struct {
	ID        int64     `json:"id"`
	Data      []byte    `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Location  *LatLng   `json:"location,omitempty"`
	Direction *float64  `json:"direction,omitempty"`
	Text      string    `json:"text,omitempty"`
}

// ExternalDataset is a foreign geographic document imported from a
// third-party tool, kept separate from the app's own recording data.
// Rows are append-only.
type ExternalDataset struct {
	ID        int64             `json:"id"`
	Type      string            `json:"type"` // currently always "geojson"
	Name      string            `json:"name"`
	Data      FeatureCollection `json:"data"`
	Timestamp time.Time         `json:"timestamp"`
}

// ExternalPhotoAsset is one image embedded in a foreign archive import.
// Assets are grouped by the import id assigned to the whole operation
// and looked up by (ImportID, FileName); there is no foreign key back
// to a dataset row.
type ExternalPhotoAsset struct {
	ID        int64     `json:"id"`
	ImportID  string    `json:"import_id"`
	FileName  string    `json:"file_name"`
	Blob      []byte    `json:"blob"`
	Timestamp time.Time `json:"timestamp"`
}

// LastPosition is the single mutable settings row remembering the map
// viewport. It survives a full data reset.
type LastPosition struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Zoom      int       `json:"zoom"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultLastPosition returns the fallback viewport used when no
// position was ever saved.
func DefaultLastPosition() LastPosition {
	return LastPosition{
		Lat:       DefaultLat,
		Lng:       DefaultLng,
		Zoom:      DefaultZoom,
		Timestamp: time.Now(),
	}
}
