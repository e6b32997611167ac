// Package codec translates between the internal track/photo model and
// the two interchange formats: KMZ (a zip archive with one KML document
// plus packaged images) and plain GeoJSON. Import is provenance-aware:
// documents produced by this application are reconstructed into the
// native model, anything else is persisted as an external dataset.
package codec

import (
	"bytes"
	"fmt"

	"geotrail/internal/domain/geo"
)

// Creator identifies documents produced by this application. It is
// embedded as the KML author marker and as the GeoJSON top-level
// creator attribute, and matched exactly on import.
const Creator = "GeoTrail"

// Error reports a malformed or unconvertible interchange document.
// Per-feature corruption is never an Error: bad features are filtered
// and the rest of the document imports normally.
type Error struct {
	Cause string
}

func (e *Error) Error() string {
	return "codec: " + e.Cause
}

func errorf(format string, args ...any) *Error {
	return &Error{Cause: fmt.Sprintf(format, args...)}
}

// Kind discriminates the two import outcomes.
type Kind string

const (
	// KindNative marks a reconstruction of this app's own data. The
	// payload is returned unpersisted so the caller can decide whether
	// to replace the current session with it.
	KindNative Kind = "native"
	// KindForeign marks third-party data. The foreign path persists its
	// payload itself; the result carries the stored dataset row.
	KindForeign Kind = "foreign"
)

// Result is the outcome of an import.
type Result struct {
	Kind Kind

	// Native payload, not yet persisted.
	Tracks []geo.Track
	Photos []geo.Photo

	// Foreign payload, already persisted.
	Dataset  *geo.ExternalDataset
	ImportID string
	Assets   int
}

// DatasetStore is the slice of the local store the foreign import path
// writes through. Rows are append-only.
type DatasetStore interface {
	AddExternalDataset(ds *geo.ExternalDataset) (int64, error)
	AddExternalPhotoAsset(asset *geo.ExternalPhotoAsset) (int64, error)
}

var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// Import sniffs the document format, classifies provenance and routes
// to the matching reconstruction. name is the original file name,
// recorded on the dataset row when the document turns out foreign.
func Import(name string, data []byte, store DatasetStore) (*Result, error) {
	if len(data) == 0 {
		return nil, errorf("empty document")
	}
	if bytes.HasPrefix(data, zipMagic) {
		return importKMZ(name, data, store)
	}
	return importGeoJSON(name, data, store)
}
