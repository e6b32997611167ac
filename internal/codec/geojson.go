package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"geotrail/internal/domain/geo"
)

// ExportGeoJSON renders the dataset as one FeatureCollection: a
// LineString feature per track and a Point feature per photo, all
// photo attributes (inline data included) carried as properties. The
// top-level creator attribute marks the document as this app's own.
func ExportGeoJSON(tracks []geo.Track, photos []geo.Photo) ([]byte, error) {
	fc := geo.FeatureCollection{
		Type:    "FeatureCollection",
		Creator: Creator,
	}

	for _, t := range tracks {
		fc.Features = append(fc.Features, geo.Feature{
			Type: "Feature",
			Geometry: geo.Geometry{
				Type:        geo.GeometryLineString,
				Coordinates: geo.LineCoordinates(t.Points),
			},
			Properties: map[string]any{
				"timestamp": t.Timestamp.UTC().Format(time.RFC3339),
			},
		})
	}

	for _, p := range photos {
		if p.Location == nil {
			continue
		}
		props := map[string]any{
			"timestamp": p.Timestamp.UTC().Format(time.RFC3339),
		}
		if len(p.Data) > 0 {
			props["photoData"] = base64.StdEncoding.EncodeToString(p.Data)
		}
		if p.Direction != nil {
			props["direction"] = *p.Direction
		}
		if p.Text != "" {
			props["text"] = p.Text
		}
		fc.Features = append(fc.Features, geo.Feature{
			Type: "Feature",
			Geometry: geo.Geometry{
				Type:        geo.GeometryPoint,
				Coordinates: geo.PointCoordinates(*p.Location),
			},
			Properties: props,
		})
	}

	out, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, errorf("marshal GeoJSON: %v", err)
	}
	return out, nil
}

func importGeoJSON(name string, data []byte, store DatasetStore) (*Result, error) {
	var fc geo.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, errorf("malformed GeoJSON: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, errorf("not a FeatureCollection document")
	}

	if fc.Creator == Creator {
		return nativeFromFeatures(fc.Features), nil
	}
	return foreignFromFeatures(name, fc, store)
}

// nativeFromFeatures rebuilds tracks and photos from this app's own
// GeoJSON. Features with unusable geometry are dropped individually.
func nativeFromFeatures(features []geo.Feature) *Result {
	res := &Result{Kind: KindNative}
	for _, f := range features {
		switch f.Geometry.Type {
		case geo.GeometryLineString:
			points := parseLineCoordinates(f.Geometry.Coordinates)
			if len(points) == 0 {
				continue
			}
			res.Tracks = append(res.Tracks, geo.Track{
				Timestamp:   propTime(f.Properties, "timestamp"),
				Points:      points,
				TotalPoints: len(points),
			})
		case geo.GeometryPoint:
			point := parsePointCoordinates(f.Geometry.Coordinates)
			if point == nil {
				continue
			}
			photo := geo.Photo{
				Timestamp: propTime(f.Properties, "timestamp"),
				Location:  point,
				Text:      propString(f.Properties, "text"),
			}
			if encoded := propString(f.Properties, "photoData"); encoded != "" {
				if decoded, err := base64.StdEncoding.DecodeString(encoded); err == nil {
					photo.Data = decoded
				}
			}
			if dir, ok := propFloat(f.Properties, "direction"); ok {
				photo.Direction = &dir
			}
			res.Photos = append(res.Photos, photo)
		}
	}
	return res
}

// foreignFromFeatures tags every feature with a fresh import id and
// persists the whole document as one external dataset row.
func foreignFromFeatures(name string, fc geo.FeatureCollection, store DatasetStore) (*Result, error) {
	importID := uuid.NewString()
	for i := range fc.Features {
		if fc.Features[i].Properties == nil {
			fc.Features[i].Properties = map[string]any{}
		}
		fc.Features[i].Properties["importId"] = importID
	}

	dataset := &geo.ExternalDataset{
		Type:      "geojson",
		Name:      name,
		Data:      fc,
		Timestamp: time.Now(),
	}
	id, err := store.AddExternalDataset(dataset)
	if err != nil {
		return nil, fmt.Errorf("store external dataset: %w", err)
	}
	dataset.ID = id

	return &Result{
		Kind:     KindForeign,
		Dataset:  dataset,
		ImportID: importID,
	}, nil
}

// parseLineCoordinates decodes a GeoJSON LineString coordinate array,
// swapping (lng, lat) pairs into LatLng and dropping pairs that fail
// to parse as finite numbers.
func parseLineCoordinates(raw json.RawMessage) []geo.LatLng {
	var pairs []json.RawMessage
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil
	}
	var points []geo.LatLng
	for _, pair := range pairs {
		if p := parsePointCoordinates(pair); p != nil {
			points = append(points, *p)
		}
	}
	return points
}

// parsePointCoordinates decodes one (lng, lat) pair, nil when the pair
// is malformed or non-finite.
func parsePointCoordinates(raw json.RawMessage) *geo.LatLng {
	var values []any
	if err := json.Unmarshal(raw, &values); err != nil || len(values) < 2 {
		return nil
	}
	lng, okLng := values[0].(float64)
	lat, okLat := values[1].(float64)
	if !okLng || !okLat || !finite(lng) || !finite(lat) {
		return nil
	}
	return &geo.LatLng{Lat: lat, Lng: lng}
}

func propString(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func propFloat(props map[string]any, key string) (float64, bool) {
	f, ok := props[key].(float64)
	return f, ok
}

func propTime(props map[string]any, key string) time.Time {
	t, err := time.Parse(time.RFC3339, propString(props, key))
	if err != nil {
		return time.Time{}
	}
	return t
}
