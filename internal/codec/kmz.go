package codec

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"geotrail/internal/domain/geo"
)

const (
	kmlDocName = "doc.kml"
	imagesDir  = "images"
)

func photoFileName(id int64) string {
	return fmt.Sprintf("photo_%d.jpg", id)
}

// ExportKMZ packages the dataset as a KMZ archive: one KML document
// plus every photo binary under images/, named deterministically from
// the photo id. Photos without binary data are not packaged.
func ExportKMZ(tracks []geo.Track, photos []geo.Photo) ([]byte, error) {
	kml, err := buildKML(tracks, photos)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create(kmlDocName)
	if err != nil {
		return nil, errorf("create archive entry: %v", err)
	}
	if _, err := w.Write(kml); err != nil {
		return nil, errorf("write KML entry: %v", err)
	}

	for _, p := range photos {
		if len(p.Data) == 0 {
			continue
		}
		w, err := zw.Create(imagesDir + "/" + photoFileName(p.ID))
		if err != nil {
			return nil, errorf("create image entry: %v", err)
		}
		if _, err := w.Write(p.Data); err != nil {
			return nil, errorf("write image entry: %v", err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, errorf("close archive: %v", err)
	}
	return buf.Bytes(), nil
}

func importKMZ(name string, data []byte, store DatasetStore) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errorf("open archive: %v", err)
	}

	entries := make(map[string][]byte, len(zr.File))
	var kmlData []byte
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			continue
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		clean := path.Clean(f.Name)
		entries[clean] = content
		if kmlData == nil && strings.HasSuffix(strings.ToLower(clean), ".kml") {
			kmlData = content
		}
	}
	if kmlData == nil {
		return nil, errorf("no KML document in archive")
	}

	doc, err := parseKML(kmlData)
	if err != nil {
		return nil, err
	}
	marks := doc.allPlacemarks()

	if doc.Author.Name == Creator {
		return nativeFromPlacemarks(marks, entries), nil
	}
	return foreignFromPlacemarks(name, marks, entries, store)
}

// nativeFromPlacemarks rebuilds the internal model from this app's own
// archive. Nothing is persisted: the caller decides whether to replace
// the current session with the result.
func nativeFromPlacemarks(marks []kmlPlacemark, entries map[string][]byte) *Result {
	res := &Result{Kind: KindNative}
	for _, pm := range marks {
		switch {
		case pm.LineString != nil:
			points := parseCoordinates(pm.LineString.Coordinates)
			if len(points) == 0 {
				continue
			}
			res.Tracks = append(res.Tracks, geo.Track{
				Timestamp:   parseWhen(pm.TimeStamp),
				Points:      points,
				TotalPoints: len(points),
			})
		case pm.Point != nil:
			points := parseCoordinates(pm.Point.Coordinates)
			if len(points) == 0 {
				continue
			}
			photo := geo.Photo{
				Timestamp: parseWhen(pm.TimeStamp),
				Location:  &points[0],
				Text:      captionText(pm.Description),
			}
			if ref := imageRef(pm.Description); ref != "" {
				photo.Data = resolveImage(ref, entries)
			}
			res.Photos = append(res.Photos, photo)
		}
	}
	return res
}

// resolveImage looks an image reference up against the packaged image
// folder, tolerating absolute-ish references from other writers.
func resolveImage(ref string, entries map[string][]byte) []byte {
	ref = path.Clean(strings.TrimPrefix(ref, "./"))
	if data, ok := entries[ref]; ok {
		return data
	}
	if data, ok := entries[imagesDir+"/"+path.Base(ref)]; ok {
		return data
	}
	return nil
}

// foreignFromPlacemarks converts a third-party archive into a generic
// feature collection, tags every feature with a fresh import id and
// persists the document plus its packaged images. This path owns its
// own persistence, unlike the native one.
func foreignFromPlacemarks(name string, marks []kmlPlacemark, entries map[string][]byte, store DatasetStore) (*Result, error) {
	importID := uuid.NewString()

	fc := geo.FeatureCollection{Type: "FeatureCollection"}
	for _, pm := range marks {
		var geom geo.Geometry
		switch {
		case pm.LineString != nil:
			points := parseCoordinates(pm.LineString.Coordinates)
			if len(points) == 0 {
				continue
			}
			geom = geo.Geometry{Type: geo.GeometryLineString, Coordinates: geo.LineCoordinates(points)}
		case pm.Point != nil:
			points := parseCoordinates(pm.Point.Coordinates)
			if len(points) == 0 {
				continue
			}
			geom = geo.Geometry{Type: geo.GeometryPoint, Coordinates: geo.PointCoordinates(points[0])}
		default:
			continue
		}

		props := map[string]any{"importId": importID}
		if pm.Name != "" {
			props["name"] = pm.Name
		}
		if pm.Description != "" {
			props["description"] = pm.Description
		}
		fc.Features = append(fc.Features, geo.Feature{
			Type:       "Feature",
			Geometry:   geom,
			Properties: props,
		})
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

	assets := 0
	for entry, blob := range entries {
		if strings.HasSuffix(strings.ToLower(entry), ".kml") {
			continue
		}
		if _, err := store.AddExternalPhotoAsset(&geo.ExternalPhotoAsset{
			ImportID:  importID,
			FileName:  entry,
			Blob:      blob,
			Timestamp: time.Now(),
		}); err != nil {
			return nil, fmt.Errorf("store photo asset %s: %w", entry, err)
		}
		assets++
	}

	return &Result{
		Kind:     KindForeign,
		Dataset:  dataset,
		ImportID: importID,
		Assets:   assets,
	}, nil
}
