package geo

import (
	"sort"

	"github.com/golang/geo/s2"
)

// Cluster is either a single marker (Count 1) or an aggregate of nearby
// markers pinned at the centroid of its densest children.
type Cluster struct {
	Center  Point `json:"center"`
	Count   int64 `json:"count"`
	Members []int `json:"members,omitempty"` // indices into the added points, kept while Count <= MaxUnclustered
}

type clusterUnit struct {
	cnt         int64
	containment [4]bool // one per child cell
	pin         s2.Point
	members     []int
}

// Clusterer groups markers on S2 cells so a dense marker layer can be
// summarised. Points are added with AddPoint and read back with Clusters.
type Clusterer struct {
	level  int
	points map[s2.CellID][]int
	pos    []Point
	units  map[s2.CellID]*clusterUnit
}

const (
	expectedCells       = 16
	minLevel            = 2
	maxLevel            = 18
	MaxUnclustered      = 10
	weightDiffThreshold = 8
)

// BaseLevel picks the S2 level at which the viewport is covered by about
// expectedCells cells around center.
func BaseLevel(viewport s2.Rect, center Point) int {
	vpArea := viewport.Area()
	centerCell := s2.CellIDFromLatLng(center.LatLng())
	for lv := maxLevel; lv >= minLevel; lv-- {
		cc := s2.CellFromCellID(centerCell.Parent(lv))
		if vpArea/cc.ApproxArea() < expectedCells {
			return lv
		}
	}
	return minLevel
}

func NewClusterer(viewport s2.Rect, center Point) *Clusterer {
	return &Clusterer{
		level:  BaseLevel(viewport, center),
		points: make(map[s2.CellID][]int),
		units:  make(map[s2.CellID]*clusterUnit),
	}
}

// ClusterPoints is a shortcut that uses the bounds of points as viewport.
func ClusterPoints(points []Point) []Cluster {
	center, ok := Center(points)
	if !ok {
		return []Cluster{}
	}
	c := NewClusterer(Bounds(points), center)
	for _, p := range points {
		c.AddPoint(p)
	}
	return c.Clusters()
}

// AddPoint registers a marker position; its index is the order of addition.
func (c *Clusterer) AddPoint(p Point) {
	idx := len(c.pos)
	c.pos = append(c.pos, p)
	cell := s2.CellIDFromLatLng(p.LatLng()).Parent(maxLevel)
	c.points[cell] = append(c.points[cell], idx)
}

// Clusters aggregates the added points. Small groups are returned as their
// individual markers, larger ones as a single pinned cluster. The result is
// sorted by descending count, then by latitude.
func (c *Clusterer) Clusters() []Cluster {
	c.aggregate()
	r := make([]Cluster, 0, len(c.units))
	for _, unit := range c.units {
		if unit.cnt <= MaxUnclustered {
			for _, idx := range unit.members {
				r = append(r, Cluster{Center: c.pos[idx], Count: 1, Members: []int{idx}})
			}
			continue
		}
		ll := s2.LatLngFromPoint(unit.pin)
		r = append(r, Cluster{
			Center: Point{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()},
			Count:  unit.cnt,
		})
	}
	sort.Slice(r, func(i, j int) bool {
		if r[i].Count != r[j].Count {
			return r[i].Count > r[j].Count
		}
		if r[i].Center.Lat != r[j].Center.Lat {
			return r[i].Center.Lat < r[j].Center.Lat
		}
		return r[i].Center.Lon < r[j].Center.Lon
	})
	return r
}

func (c *Clusterer) centroid(parent s2.CellID, children []*clusterUnit) s2.Point {
	pins := make([]s2.Point, 0, len(children))
	maxWeight := int64(0)
	for _, u := range children {
		if maxWeight < u.cnt {
			maxWeight = u.cnt
		}
	}
	for _, u := range children {
		if maxWeight/u.cnt < weightDiffThreshold {
			pins = append(pins, u.pin)
		}
	}
	switch len(pins) {
	case 1:
		return pins[0]
	case 2:
		return s2.PlanarCentroid(pins[0], pins[0], pins[1])
	case 3:
		return s2.PlanarCentroid(pins[0], pins[1], pins[2])
	}
	return s2.PointFromLatLng(parent.LatLng())
}

// step merges the current units one level up, then recurses until the
// base level is reached.
func (c *Clusterer) step(level int) {
	if level < c.level {
		return
	}
	next := make(map[s2.CellID]*clusterUnit)
	for cell, unit := range c.units {
		p := cell.Parent(level)
		eu, ok := next[p]
		if !ok {
			next[p] = &clusterUnit{
				cnt:     unit.cnt,
				members: unit.members,
			}
		} else {
			merged := &clusterUnit{
				cnt:         eu.cnt + unit.cnt,
				containment: eu.containment,
			}
			if merged.cnt <= MaxUnclustered {
				merged.members = append(append([]int{}, eu.members...), unit.members...)
			}
			next[p] = merged
		}
		next[p].containment[cell.ChildPosition(level+1)] = true
	}
	for pCell, pUnit := range next {
		children := make([]*clusterUnit, 0, 4)
		for i, v := range pUnit.containment {
			if !v {
				continue
			}
			if ch, ok := c.units[pCell.Children()[i]]; ok {
				children = append(children, ch)
			}
		}
		pUnit.pin = c.centroid(pCell, children)
	}
	c.units = next
	c.step(level - 1)
}

func (c *Clusterer) aggregate() {
	c.units = make(map[s2.CellID]*clusterUnit)
	for cell, idxs := range c.points {
		c.units[cell] = &clusterUnit{
			cnt:         int64(len(idxs)),
			containment: [4]bool{true, true, true, true},
			pin:         s2.PointFromLatLng(cell.LatLng()),
		}
		if len(idxs) <= MaxUnclustered {
			c.units[cell].members = idxs
		}
	}
	c.step(maxLevel - 1)
}
