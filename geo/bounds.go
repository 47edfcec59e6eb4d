package geo

import (
	"github.com/golang/geo/s2"
)

// Bounds returns the smallest lat/lng rectangle containing every point.
// An empty input yields an empty rectangle.
func Bounds(points []Point) s2.Rect {
	rb := s2.NewRectBounder()
	for _, p := range points {
		rb.AddPoint(s2.PointFromLatLng(p.LatLng()))
	}
	return rb.RectBound()
}

// Center returns the center of the bounding rectangle of points.
func Center(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	c := Bounds(points).Center()
	return Point{Lat: c.Lat.Degrees(), Lon: c.Lng.Degrees()}, true
}
