package project

import (
	"time"

	"geotrail/internal/domain/geo"
)

// Project is one published snapshot of the local dataset. The name is
// the remote document's unique key; there is no separate id field.
type Project struct {
	Name        string     `json:"name"`
	UserID      int        `json:"user_id"`
	StartTime   time.Time  `json:"start_time"`
	CreatedAt   time.Time  `json:"created_at"`
	Tracks      []TrackDoc `json:"tracks"`
	Photos      []PhotoDoc `json:"photos"`
	TracksCount int        `json:"tracks_count"`
	PhotosCount int        `json:"photos_count"`
}

// TrackDoc is a track formatted for the remote record. Point order is
// carried verbatim from the local track.
type TrackDoc struct {
	Timestamp time.Time    `json:"timestamp"`
	Points    []geo.LatLng `json:"points"`
}

// PhotoDoc is a photo formatted for the remote record: the inline
// binary payload is replaced by the path of the uploaded blob.
type PhotoDoc struct {
	BlobPath  string      `json:"blob_path"`
	Timestamp time.Time   `json:"timestamp"`
	Location  *geo.LatLng `json:"location,omitempty"`
	Direction *float64    `json:"direction,omitempty"`
	Text      string      `json:"text,omitempty"`
}
