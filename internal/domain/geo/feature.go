package geo

import "encoding/json"

// GeoJSON geometry types recognized by the importer. Anything else is
// carried through untouched.
const (
	GeometryLineString = "LineString"
	GeometryPoint      = "Point"
)

// FeatureCollection is a generic GeoJSON document. It doubles as the
// interchange shape produced by the codec and as the payload stored in
// an ExternalDataset row, so foreign documents round-trip losslessly.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Creator  string    `json:"creator,omitempty"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Geometry keeps coordinates as raw JSON: foreign documents may carry
// geometry types this app never interprets, and re-encoding their
// coordinates must not alter them.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// LineCoordinates encodes a point sequence as GeoJSON (lng, lat) pairs.
func LineCoordinates(points []LatLng) json.RawMessage {
	pairs := make([][2]float64, 0, len(points))
	for _, p := range points {
		pairs = append(pairs, [2]float64{p.Lng, p.Lat})
	}
	raw, _ := json.Marshal(pairs)
	return raw
}

// PointCoordinates encodes a single position as a GeoJSON (lng, lat) pair.
func PointCoordinates(p LatLng) json.RawMessage {
	raw, _ := json.Marshal([2]float64{p.Lng, p.Lat})
	return raw
}
