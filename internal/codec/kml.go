package codec

import (
	"encoding/xml"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"geotrail/internal/domain/geo"
)

const (
	kmlNamespace  = "http://www.opengis.net/kml/2.2"
	atomNamespace = "http://www.w3.org/2005/Atom"

	trackStyleID = "trackLine"
	photoStyleID = "photoMarker"
)

// Marshal-side KML shapes. Prefixed tag names are emitted literally,
// which is how encoding/xml produces the atom-namespaced author marker.
type kmlFile struct {
	XMLName   xml.Name    `xml:"kml"`
	Xmlns     string      `xml:"xmlns,attr"`
	XmlnsAtom string      `xml:"xmlns:atom,attr"`
	Document  kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Name       string         `xml:"name"`
	Author     *kmlAuthor     `xml:"atom:author,omitempty"`
	Styles     []kmlStyle     `xml:"Style"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlAuthor struct {
	Name string `xml:"atom:name"`
}

type kmlStyle struct {
	ID        string        `xml:"id,attr"`
	LineStyle *kmlLineStyle `xml:"LineStyle,omitempty"`
	IconStyle *kmlIconStyle `xml:"IconStyle,omitempty"`
}

type kmlLineStyle struct {
	Color string `xml:"color"`
	Width int    `xml:"width"`
}

type kmlIconStyle struct {
	Scale float64  `xml:"scale"`
	Icon  *kmlIcon `xml:"Icon,omitempty"`
}

type kmlIcon struct {
	Href string `xml:"href"`
}

type kmlPlacemark struct {
	Name        string        `xml:"name,omitempty"`
	Description string        `xml:"description,omitempty"`
	StyleURL    string        `xml:"styleUrl,omitempty"`
	TimeStamp   *kmlTimeStamp `xml:"TimeStamp,omitempty"`
	Point       *kmlGeometry  `xml:"Point,omitempty"`
	LineString  *kmlGeometry  `xml:"LineString,omitempty"`
}

type kmlTimeStamp struct {
	When string `xml:"when"`
}

type kmlGeometry struct {
	Coordinates string `xml:"coordinates"`
}

// Unmarshal-side shapes. Tags carry no namespace so third-party
// documents match regardless of prefixing, and placemarks nested in
// folders are collected recursively.
type kmlParsed struct {
	XMLName  xml.Name     `xml:"kml"`
	Document kmlParsedDoc `xml:"Document"`
}

type kmlParsedDoc struct {
	Name       string          `xml:"name"`
	Author     kmlParsedAuthor `xml:"author"`
	Placemarks []kmlPlacemark  `xml:"Placemark"`
	Folders    []kmlFolder     `xml:"Folder"`
}

type kmlParsedAuthor struct {
	Name string `xml:"name"`
}

type kmlFolder struct {
	Placemarks []kmlPlacemark `xml:"Placemark"`
	Folders    []kmlFolder    `xml:"Folder"`
}

func (d kmlParsedDoc) allPlacemarks() []kmlPlacemark {
	marks := append([]kmlPlacemark(nil), d.Placemarks...)
	for _, f := range d.Folders {
		marks = append(marks, f.allPlacemarks()...)
	}
	return marks
}

func (f kmlFolder) allPlacemarks() []kmlPlacemark {
	marks := append([]kmlPlacemark(nil), f.Placemarks...)
	for _, sub := range f.Folders {
		marks = append(marks, sub.allPlacemarks()...)
	}
	return marks
}

func buildKML(tracks []geo.Track, photos []geo.Photo) ([]byte, error) {
	doc := kmlDocument{
		Name:   Creator,
		Author: &kmlAuthor{Name: Creator},
		Styles: []kmlStyle{
			{ID: trackStyleID, LineStyle: &kmlLineStyle{Color: "ff0000ff", Width: 4}},
			{ID: photoStyleID, IconStyle: &kmlIconStyle{
				Scale: 1.1,
				Icon:  &kmlIcon{Href: "http://maps.google.com/mapfiles/kml/pushpin/ylw-pushpin.png"},
			}},
		},
	}

	for _, t := range tracks {
		doc.Placemarks = append(doc.Placemarks, kmlPlacemark{
			Name:       fmt.Sprintf("Track %d", t.ID),
			StyleURL:   "#" + trackStyleID,
			TimeStamp:  kmlWhen(t.Timestamp),
			LineString: &kmlGeometry{Coordinates: formatCoordinates(t.Points)},
		})
	}

	for _, p := range photos {
		if p.Location == nil {
			continue
		}
		doc.Placemarks = append(doc.Placemarks, kmlPlacemark{
			Name:        fmt.Sprintf("Photo %d", p.ID),
			Description: photoDescription(p),
			StyleURL:    "#" + photoStyleID,
			TimeStamp:   kmlWhen(p.Timestamp),
			Point:       &kmlGeometry{Coordinates: formatCoordinates([]geo.LatLng{*p.Location})},
		})
	}

	out, err := xml.MarshalIndent(kmlFile{
		Xmlns:     kmlNamespace,
		XmlnsAtom: atomNamespace,
		Document:  doc,
	}, "", "  ")
	if err != nil {
		return nil, errorf("marshal KML: %v", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func kmlWhen(t time.Time) *kmlTimeStamp {
	if t.IsZero() {
		return nil
	}
	return &kmlTimeStamp{When: t.UTC().Format(time.RFC3339)}
}

// photoDescription embeds the packaged image by its deterministic name
// so a round-trip import can resolve the binary back out of the
// archive. Photos without data get a caption-only description.
func photoDescription(p geo.Photo) string {
	var b strings.Builder
	if p.Text != "" {
		b.WriteString(p.Text)
	}
	if len(p.Data) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, `<img src="%s/%s" width="400"/>`, imagesDir, photoFileName(p.ID))
	}
	return b.String()
}

func parseKML(data []byte) (kmlParsedDoc, error) {
	var parsed kmlParsed
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return kmlParsedDoc{}, errorf("malformed KML: %v", err)
	}
	return parsed.Document, nil
}

// formatCoordinates renders a point sequence as KML "lng,lat,alt"
// tuples, full float precision.
func formatCoordinates(points []geo.LatLng) string {
	var b strings.Builder
	for i, p := range points {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(p.Lng, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Lat, 'f', -1, 64))
		b.WriteString(",0")
	}
	return b.String()
}

// parseCoordinates extracts the valid positions from a KML coordinate
// string. Tuples that do not parse as finite numbers are dropped; the
// sequence order of the survivors is preserved.
func parseCoordinates(s string) []geo.LatLng {
	var points []geo.LatLng
	for _, tuple := range strings.Fields(s) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			continue
		}
		lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLng != nil || errLat != nil || !finite(lng) || !finite(lat) {
			continue
		}
		points = append(points, geo.LatLng{Lat: lat, Lng: lng})
	}
	return points
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

var (
	imgSrcPattern = regexp.MustCompile(`<img[^>]*\ssrc="([^"]+)"`)
	imgTagPattern = regexp.MustCompile(`<img[^>]*/?>`)
)

// imageRef pulls the packaged-image reference out of a placemark
// description, if any.
func imageRef(description string) string {
	m := imgSrcPattern.FindStringSubmatch(description)
	if m == nil {
		return ""
	}
	return m[1]
}

// captionText strips embedded image markup from a description, leaving
// the human caption.
func captionText(description string) string {
	return strings.TrimSpace(imgTagPattern.ReplaceAllString(description, ""))
}

func parseWhen(ts *kmlTimeStamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(ts.When))
	if err != nil {
		return time.Time{}
	}
	return t
}
