package terminal

import (
	"fmt"
	"os"
	"path/filepath"

	"skywatch/geo"
	"skywatch/timefmt"
	"skywatch/view"

	geojson "github.com/paulmach/go.geojson"
)

// MarkersCollection converts the marker layer to point features. GeoJSON
// positions are [lon, lat].
func MarkersCollection(markers []view.Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	points := make([]geo.Point, 0, len(markers))
	for _, m := range markers {
		f := geojson.NewPointFeature([]float64{m.Position.Lon, m.Position.Lat})
		f.ID = m.Report.ID
		f.SetProperty("event_type", m.Report.EventType)
		if m.Report.HasDescription() {
			f.SetProperty("description", *m.Report.Description)
		}
		f.SetProperty("observed_at", timefmt.ISO(m.Report.ObservedAt.Time))
		f.SetProperty("popup", m.Popup)
		fc.AddFeature(f)
		points = append(points, m.Position)
	}
	setBoundingBox(fc, points)
	return fc
}

// ClustersCollection converts S2 clusters to point features with a count.
func ClustersCollection(clusters []geo.Cluster) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	points := make([]geo.Point, 0, len(clusters))
	for _, c := range clusters {
		f := geojson.NewPointFeature([]float64{c.Center.Lon, c.Center.Lat})
		f.SetProperty("count", c.Count)
		fc.AddFeature(f)
		points = append(points, c.Center)
	}
	setBoundingBox(fc, points)
	return fc
}

func setBoundingBox(fc *geojson.FeatureCollection, points []geo.Point) {
	if len(points) == 0 {
		return
	}
	r := geo.Bounds(points)
	fc.BoundingBox = []float64{r.Lo().Lng.Degrees(), r.Lo().Lat.Degrees(), r.Hi().Lng.Degrees(), r.Hi().Lat.Degrees()}
}

// WriteCollection atomically replaces path with the encoded collection.
func WriteCollection(path string, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".markers-*.geojson")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
