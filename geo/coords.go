package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/shopspring/decimal"
)

const (
	DisplayPlaces = 5 // list entries and popups
	FormPlaces    = 6 // coordinates written back into the form
)

var ErrNotFinite = errors.New("coordinate is not a finite number")

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p Point) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lon)
}

func (p Point) String() string {
	return fmt.Sprintf("%s, %s", Fixed(p.Lat, DisplayPlaces), Fixed(p.Lon, DisplayPlaces))
}

// ParseCoordinate parses a form value into decimal degrees. NaN and
// infinities are rejected. Empty text is an error too, not 0: a blank
// field never becomes the point (0, 0).
func ParseCoordinate(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrNotFinite)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotFinite, text)
	}
	if !IsFinite(v) {
		return 0, fmt.Errorf("%w: %q", ErrNotFinite, text)
	}
	return v, nil
}

func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Fixed formats v with exactly places decimals, rounding half away from zero.
func Fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
